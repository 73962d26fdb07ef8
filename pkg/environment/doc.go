// Package environment names the deployment environments an application
// runs in (development, staging, production) and normalises the values
// found in configuration.
//
// # Usage
//
//	import "github.com/dmitrymomot/sessionkit/pkg/environment"
//
//	env := environment.Parse(os.Getenv("APP_ENV")) // "prod" → Production
//	if env.IsProduction() {
//	    // production-specific behaviour
//	}
//
// The logger package uses Parse to pick output defaults per environment.
package environment
