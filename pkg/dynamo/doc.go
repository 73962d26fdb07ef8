// Package dynamo stores sessions in an Amazon DynamoDB table.
//
// The table uses the owner partition as hash key and the session token as
// range key, so a token lookup is a single GetItem and all sessions of one
// owner are one Query away. The expiry attribute doubles as the table's TTL
// attribute, letting DynamoDB purge expired items in the background; the
// session manager still checks expiry on every read because TTL deletion
// is lazy.
//
//	store, err := dynamo.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	manager, err := session.New(store, session.WithSalt(salt))
//
// For DynamoDB Local set Endpoint and static credentials, then call
// CreateTable once. Every backend failure wraps session.ErrStoreUnavailable
// and keeps the AWS error code in the message.
package dynamo
