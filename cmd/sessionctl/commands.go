package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

type app struct {
	manager *session.Manager
	backend *backend
	out     io.Writer
	log     *slog.Logger
}

// sessionView is the printed form of a session.
type sessionView struct {
	Token          string         `json:"token"`
	CSRFToken      string         `json:"csrf_token,omitempty"`
	Partition      string         `json:"partition"`
	Data           map[string]any `json:"data,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	ExpiresAt      time.Time      `json:"expires_at"`
	Expired        bool           `json:"expired"`
}

func (a *app) view(s *session.Session, withCSRF bool) sessionView {
	v := sessionView{
		Token:          s.Token,
		Partition:      s.Partition,
		Data:           s.Data,
		CreatedAt:      time.Unix(s.CreatedAt, 0).UTC(),
		LastAccessedAt: time.Unix(s.LastAccessedAt, 0).UTC(),
		ExpiresAt:      s.ExpiresTime().UTC(),
		Expired:        s.IsExpired(a.manager.Now()),
	}
	if withCSRF {
		v.CSRFToken = s.CSRFToken
	}
	return v
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUnknownCommand
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "create":
		return a.runCreate(ctx, rest)
	case "inspect":
		return a.runInspect(ctx, rest)
	case "list":
		return a.runList(ctx, rest)
	case "revoke":
		return a.runRevoke(ctx, rest)
	case "revoke-all":
		return a.runRevokeAll(ctx, rest)
	case "migrate":
		return a.runMigrate(ctx)
	case "purge":
		return a.runPurge(ctx)
	case "health":
		return a.runHealth(ctx)
	}
	return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
}

// dataFlag collects repeated -data key=value pairs.
type dataFlag []string

func (d *dataFlag) String() string { return strings.Join(*d, ",") }

func (d *dataFlag) Set(value string) error {
	*d = append(*d, value)
	return nil
}

func (d *dataFlag) values() (map[string]any, error) {
	data := make(map[string]any, len(*d))
	for _, pair := range *d {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidData, pair)
		}
		data[k] = v
	}
	return data, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func required(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: -%s", ErrMissingFlag, name)
	}
	return nil
}

func (a *app) runCreate(ctx context.Context, args []string) error {
	fs := newFlagSet("create")
	owner := fs.String("owner", "", "owner key (e.g. user id)")
	ttl := fs.Int("ttl", 0, "lifetime in seconds (0 uses the configured default)")
	var pairs dataFlag
	fs.Var(&pairs, "data", "session data as key=value, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("owner", *owner); err != nil {
		return err
	}
	data, err := pairs.values()
	if err != nil {
		return err
	}

	s, err := a.manager.Create(ctx, *owner, data, *ttl)
	if err != nil {
		return err
	}
	return a.print(a.view(s, true))
}

func (a *app) runInspect(ctx context.Context, args []string) error {
	fs := newFlagSet("inspect")
	tok := fs.String("token", "", "session token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("token", *tok); err != nil {
		return err
	}

	s, err := a.manager.Get(ctx, *tok)
	if err != nil {
		return err
	}
	return a.print(a.view(s, false))
}

func (a *app) ownerSession(owner string) *session.Session {
	return &session.Session{Partition: a.manager.Partition(owner)}
}

func (a *app) runList(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	owner := fs.String("owner", "", "owner key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("owner", *owner); err != nil {
		return err
	}

	sessions, err := a.manager.List(ctx, a.ownerSession(*owner))
	if err != nil {
		return err
	}

	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, a.view(s, false))
	}
	return a.print(views)
}

func (a *app) runRevoke(ctx context.Context, args []string) error {
	fs := newFlagSet("revoke")
	tok := fs.String("token", "", "session token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("token", *tok); err != nil {
		return err
	}

	removed := false
	s, err := a.manager.Get(ctx, *tok)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
	case err != nil:
		return err
	default:
		if removed, err = a.manager.Delete(ctx, s); err != nil {
			return err
		}
	}
	return a.print(map[string]bool{"removed": removed})
}

func (a *app) runRevokeAll(ctx context.Context, args []string) error {
	fs := newFlagSet("revoke-all")
	owner := fs.String("owner", "", "owner key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("owner", *owner); err != nil {
		return err
	}

	removed, err := a.manager.DeleteAll(ctx, a.ownerSession(*owner))
	if err != nil {
		return err
	}
	a.log.InfoContext(ctx, "owner sessions revoked", logger.Event("revoke_all"), logger.Partition(a.manager.Partition(*owner)))
	return a.print(map[string]bool{"removed": removed})
}

func (a *app) runMigrate(ctx context.Context) error {
	if a.backend.migrate == nil {
		a.log.InfoContext(ctx, "backend needs no migration")
		return nil
	}
	if err := a.backend.migrate(ctx); err != nil {
		return err
	}
	a.log.InfoContext(ctx, "backend migrated")
	return nil
}

func (a *app) runPurge(ctx context.Context) error {
	if a.backend.purge == nil {
		return fmt.Errorf("%w: %s expires sessions natively", ErrUnsupported, a.backend.name)
	}
	n, err := a.backend.purge(ctx, a.manager.Now())
	if err != nil {
		return err
	}
	return a.print(map[string]int64{"purged": n})
}

func (a *app) runHealth(ctx context.Context) error {
	if a.backend.health != nil {
		if err := a.backend.health(ctx); err != nil {
			return err
		}
	}
	return a.print(map[string]string{"backend": a.backend.name, "status": "ok"})
}
