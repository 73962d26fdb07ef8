package environment

import "strings"

// Environment represents application environment.
type Environment string

const (
	// Development for development environment.
	Development Environment = "development"
	// Production for production environment.
	Production Environment = "production"
	// Staging for staging environment.
	Staging Environment = "staging"
)

// Parse normalises an environment name. Short aliases ("prod", "stage",
// "dev") are accepted; anything unknown maps to Development.
func Parse(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Production), "prod":
		return Production
	case string(Staging), "stage":
		return Staging
	default:
		return Development
	}
}

// IsProduction reports whether e is the production environment.
func (e Environment) IsProduction() bool {
	return e == Production
}
