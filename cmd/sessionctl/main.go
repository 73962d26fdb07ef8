// Command sessionctl inspects and manages stored sessions.
//
// Usage:
//
//	sessionctl <command> [options]
//
// The backend is selected with SESSION_BACKEND (memory, dynamodb, redis,
// mongo, postgres). Backend settings are read from the environment and an
// optional .env file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/sessionkit/pkg/config"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

type appConfig struct {
	Backend string         `env:"SESSION_BACKEND" envDefault:"memory"`
	Session session.Config
	Logger  logger.Config
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "help", "-h", "--help":
		printUsage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "sessionctl: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.NewFromConfig(cfg.Logger, logger.WithOutput(os.Stderr), logger.WithAttr(logger.Component("sessionctl")))
	logger.SetAsDefault(log)

	b, err := openBackend(ctx, cfg.Backend, log)
	if err != nil {
		return err
	}
	defer b.close()

	m, err := session.NewFromConfig(b.store, cfg.Session, session.WithLogger(log))
	if err != nil {
		return err
	}

	a := &app{manager: m, backend: b, out: os.Stdout, log: log}
	return a.dispatch(ctx, args)
}

func printUsage() {
	fmt.Println("Usage: sessionctl <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  create      Create a session for an owner and print its tokens")
	fmt.Println("  inspect     Show the session addressed by a token")
	fmt.Println("  list        List live sessions of an owner")
	fmt.Println("  revoke      Delete a single session")
	fmt.Println("  revoke-all  Delete every session of an owner")
	fmt.Println("  migrate     Prepare the backend schema (table, indexes, migrations)")
	fmt.Println("  purge       Remove expired sessions where the backend has no native expiry")
	fmt.Println("  health      Check backend connectivity")
	fmt.Println()
	fmt.Println("Run 'sessionctl <command> -h' for command-specific options.")
}
