// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11. Load
// reads the default .env file once, parses the environment into a struct
// using its field tags and caches the result per struct type, so repeated
// calls from different components are served from memory.
//
//	var cfg session.Config
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// LoadEnv applies explicit .env files in order, later files win.
// ResetCache and ForceReloadConfig exist for tests that change the
// environment between loads.
//
// Errors can be matched with errors.Is against ErrParsingConfig and
// ErrNilPointer.
package config
