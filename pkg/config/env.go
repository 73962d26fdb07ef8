package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LoadEnv loads one or more .env files into the process environment.
// Later files override earlier ones, variables already set in the process
// are overridden as well.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	if err := godotenv.Overload(paths...); err != nil {
		return fmt.Errorf("config: load env files: %w", err)
	}
	// The default file must not be applied on top of explicit files.
	defaultEnvLoaded.Do(func() {})
	return nil
}

// MustLoadEnv works like LoadEnv but panics on failure.
func MustLoadEnv(paths ...string) {
	if err := LoadEnv(paths...); err != nil {
		panic(err)
	}
}

// ResetCache forgets every cached configuration. Intended for tests.
func ResetCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	clear(cache)
}

// ForceReloadConfig parses the environment into v again and replaces the
// cached value for its type.
func ForceReloadConfig[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	e := &entry{value: parsed}
	e.once.Do(func() {})

	cacheMu.Lock()
	cache[reflect.TypeFor[T]()] = e
	cacheMu.Unlock()

	*v = parsed
	return nil
}
