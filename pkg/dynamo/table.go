package dynamo

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// CreateTable creates the sessions table with on-demand billing if it does
// not exist yet, waits until it is active and enables TTL on the expiry
// attribute. Intended for development and first-time setup.
func (s *Store) CreateTable(ctx context.Context, maxWait time.Duration) error {
	_, err := s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(s.partitionKey), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(s.sortKey), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(s.partitionKey), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(s.sortKey), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})

	var inUse *types.ResourceInUseException
	if err != nil && !errors.As(err, &inUse) {
		return errors.Join(ErrCreateTable, classifyError(err, "create table"))
	}

	waiter := dynamodb.NewTableExistsWaiter(s.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)}, maxWait); err != nil {
		return errors.Join(ErrCreateTable, err)
	}

	_, err = s.client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(s.table),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			AttributeName: aws.String(s.ttlAttribute),
			Enabled:       aws.Bool(true),
		},
	})
	if err != nil && !isTTLAlreadyEnabled(err) {
		return errors.Join(ErrCreateTable, classifyError(err, "update ttl"))
	}
	return nil
}

// isTTLAlreadyEnabled reports the validation error DynamoDB returns when
// TTL is already on.
func isTTLAlreadyEnabled(err error) bool {
	var apiErr interface{ ErrorMessage() string }
	return errors.As(err, &apiErr) && apiErr.ErrorMessage() == "TimeToLive is already enabled"
}

// Healthcheck returns a probe that describes the sessions table.
func (s *Store) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		out, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(s.table),
		})
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if out.Table == nil || out.Table.TableStatus != types.TableStatusActive {
			return ErrHealthcheckFailed
		}
		return nil
	}
}
