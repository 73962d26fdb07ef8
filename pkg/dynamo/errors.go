package dynamo

import "errors"

var (
	ErrInvalidConfig      = errors.New("dynamo: table name and region are required")
	ErrFailedToLoadConfig = errors.New("dynamo: failed to load aws config")
	ErrHealthcheckFailed  = errors.New("dynamo: healthcheck failed")
	ErrUnprocessedItems   = errors.New("dynamo: batch delete left unprocessed items")
	ErrEncodeSession      = errors.New("dynamo: failed to encode session")
	ErrDecodeSession      = errors.New("dynamo: failed to decode stored session")
	ErrCreateTable        = errors.New("dynamo: failed to create sessions table")
)
