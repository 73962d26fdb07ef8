// Package mongo connects to MongoDB and stores sessions in a collection.
//
// New connects with retries and verifies the connection with a ping.
// Store implements session.Store with the session token as _id and an
// index on the owner partition. EnsureIndexes also installs a TTL index on
// expire_at so the server purges expired sessions on its own schedule;
// validity is still decided by the session manager at read time.
//
//	client, err := mongo.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := mongo.NewStoreFromConfig(client, cfg)
//	if err := store.EnsureIndexes(ctx); err != nil {
//		return err
//	}
package mongo
