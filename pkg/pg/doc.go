// Package pg connects to PostgreSQL with pgx/v5 and stores sessions in it.
//
// Connect opens a pgxpool with retries. Migrate applies the embedded
// sessions schema with goose/v3: one row per session keyed by
// (partition_key, sort_key), where the partition is the hashed owner and the
// sort key is the session token, with the payload in a jsonb column.
// Store implements session.Store on that table. Postgres does not expire
// rows, so run DeleteExpired periodically to keep the table small.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		return err
//	}
//	store := pg.NewStore(pool)
package pg
