// Package redis connects to Redis and stores sessions in it.
//
// Connect retries until the server answers a PING. Healthcheck returns a
// probe for liveness and readiness endpoints. Store implements
// session.Store: records are JSON strings expired by Redis itself at the
// session's ExpiresAt, and a per-owner set makes listing and revoking all
// sessions of one owner a single round trip. Keys carry the owner partition
// as a hash tag, so the store also works on Redis Cluster.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	manager, err := session.New(redis.NewStoreFromConfig(client, cfg), session.WithSalt(salt))
//
// Every backend failure returned by Store wraps session.ErrStoreUnavailable.
package redis
