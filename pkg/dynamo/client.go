package dynamo

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

// Client defines the DynamoDB operations used by Store.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	UpdateTimeToLive(ctx context.Context, params *dynamodb.UpdateTimeToLiveInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error)
}

// Option configures the store.
type Option func(*options)

type options struct {
	client        Client
	httpClient    *http.Client
	configOptions []func(*config.LoadOptions) error
	clientOptions []func(*dynamodb.Options)
}

// WithClient sets a pre-configured client. Useful for testing with mocks.
func WithClient(client Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithHTTPClient sets a custom HTTP client for DynamoDB requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithConfigOption adds a custom AWS config option.
func WithConfigOption(option func(*config.LoadOptions) error) Option {
	return func(o *options) {
		o.configOptions = append(o.configOptions, option)
	}
}

// WithClientOption adds a custom DynamoDB client option.
func WithClientOption(option func(*dynamodb.Options)) Option {
	return func(o *options) {
		o.clientOptions = append(o.clientOptions, option)
	}
}

func newClient(ctx context.Context, cfg Config, o *options) (Client, error) {
	if o.client != nil {
		return o.client, nil
	}

	awsOptions := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsOptions = append(awsOptions,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			)),
		)
	}
	if o.httpClient != nil {
		awsOptions = append(awsOptions, config.WithHTTPClient(o.httpClient))
	}
	awsOptions = append(awsOptions, o.configOptions...)

	awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadConfig, err)
	}

	return dynamodb.NewFromConfig(awsConfig, func(do *dynamodb.Options) {
		if cfg.Endpoint != "" {
			do.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		for _, opt := range o.clientOptions {
			opt(do)
		}
	}), nil
}

// classifyError wraps every backend failure with session.ErrStoreUnavailable,
// keeping the API error code for the logs.
func classifyError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %w", session.ErrStoreUnavailable, operation, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s failed (code: %s): %w", session.ErrStoreUnavailable, operation, apiErr.ErrorCode(), err)
	}

	return fmt.Errorf("%w: %s failed: %w", session.ErrStoreUnavailable, operation, err)
}
