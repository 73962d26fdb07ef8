package dynamo

import "time"

// Config holds DynamoDB session store configuration.
type Config struct {
	Table           string        `env:"DYNAMODB_SESSIONS_TABLE" envDefault:"sessions"`     // Table is the sessions table name.
	Region          string        `env:"AWS_REGION" envDefault:"us-east-1"`                 // Region is the AWS region of the table.
	Endpoint        string        `env:"DYNAMODB_ENDPOINT"`                                 // Endpoint overrides the service URL, e.g. for DynamoDB Local.
	AccessKeyID     string        `env:"AWS_ACCESS_KEY_ID"`                                 // AccessKeyID enables static credentials together with SecretAccessKey.
	SecretAccessKey string        `env:"AWS_SECRET_ACCESS_KEY"`                             // SecretAccessKey enables static credentials together with AccessKeyID.
	PartitionKey    string        `env:"DYNAMODB_PARTITION_KEY" envDefault:"partition_key"` // PartitionKey is the hash key attribute holding the owner partition.
	SortKey         string        `env:"DYNAMODB_SORT_KEY" envDefault:"sort_key"`           // SortKey is the range key attribute holding the session token.
	TTLAttribute    string        `env:"DYNAMODB_TTL_ATTRIBUTE" envDefault:"expires_at"`    // TTLAttribute is the epoch-seconds attribute used by DynamoDB TTL.
	MaxBatchRetries int           `env:"DYNAMODB_MAX_BATCH_RETRIES" envDefault:"5"`         // MaxBatchRetries bounds resubmission of unprocessed batch deletes.
	RetryBaseDelay  time.Duration `env:"DYNAMODB_RETRY_BASE_DELAY" envDefault:"50ms"`       // RetryBaseDelay is the first backoff delay for unprocessed items.
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Table:           "sessions",
		Region:          "us-east-1",
		PartitionKey:    "partition_key",
		SortKey:         "sort_key",
		TTLAttribute:    "expires_at",
		MaxBatchRetries: 5,
		RetryBaseDelay:  50 * time.Millisecond,
	}
}
