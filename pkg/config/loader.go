package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// entry is the parse result for one configuration type. A failed parse is
// cached too until ResetCache.
type entry struct {
	once  sync.Once
	value any
	err   error
}

var (
	cacheMu sync.Mutex
	cache   = map[reflect.Type]*entry{}

	defaultEnvLoaded sync.Once
)

func entryFor[T any]() *entry {
	key := reflect.TypeFor[T]()

	cacheMu.Lock()
	defer cacheMu.Unlock()

	e, ok := cache[key]
	if !ok {
		e = &entry{}
		cache[key] = e
	}
	return e
}

// Load fills v from the environment. The first call for a type reads the
// optional ./.env file and parses the env tags, later calls for the same
// type return the cached result.
//
//	var cfg session.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	defaultEnvLoaded.Do(func() {
		// A missing .env file is not an error.
		_ = godotenv.Load()
	})

	e := entryFor[T]()
	e.once.Do(func() {
		var parsed T
		if err := env.Parse(&parsed); err != nil {
			e.err = errors.Join(ErrParsingConfig, err)
			return
		}
		e.value = parsed
	})

	if e.err != nil {
		return e.err
	}
	*v = e.value.(T)
	return nil
}

// MustLoad is like Load but panics on error.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}
