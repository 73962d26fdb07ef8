package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed      = errors.New("mongo healthcheck failed")
	ErrEnsureIndexes          = errors.New("failed to create session indexes")
	ErrEncodeSession          = errors.New("failed to encode session")
)
