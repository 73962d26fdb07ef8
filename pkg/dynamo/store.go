package dynamo

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

// batchSize is the BatchWriteItem request limit.
const batchSize = 25

// record holds the non-key attributes of a session item.
type record struct {
	CSRFToken      string         `dynamodbav:"csrf_token"`
	Data           map[string]any `dynamodbav:"data"`
	CreatedAt      int64          `dynamodbav:"created_at"`
	LastAccessedAt int64          `dynamodbav:"last_accessed_at"`
	ExpiresAt      int64          `dynamodbav:"expires_at"`
	TTL            int64          `dynamodbav:"ttl_seconds"`
}

// Store implements session.Store on a DynamoDB table whose hash key is the
// owner partition and whose range key is the session token.
// It is safe for concurrent use.
type Store struct {
	client          Client
	table           string
	partitionKey    string
	sortKey         string
	ttlAttribute    string
	maxBatchRetries int
	retryBaseDelay  time.Duration
}

// New creates a DynamoDB session store.
func New(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	if cfg.Table == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	client, err := newClient(ctx, cfg, o)
	if err != nil {
		return nil, err
	}

	defaults := DefaultConfig()
	s := &Store{
		client:          client,
		table:           cfg.Table,
		partitionKey:    orDefault(cfg.PartitionKey, defaults.PartitionKey),
		sortKey:         orDefault(cfg.SortKey, defaults.SortKey),
		ttlAttribute:    orDefault(cfg.TTLAttribute, defaults.TTLAttribute),
		maxBatchRetries: cfg.MaxBatchRetries,
		retryBaseDelay:  cfg.RetryBaseDelay,
	}
	if s.retryBaseDelay <= 0 {
		s.retryBaseDelay = defaults.RetryBaseDelay
	}
	return s, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func (s *Store) key(partition, token string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		s.partitionKey: &types.AttributeValueMemberS{Value: partition},
		s.sortKey:      &types.AttributeValueMemberS{Value: token},
	}
}

func (s *Store) Get(ctx context.Context, partition, token string) (*session.Session, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.key(partition, token),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, classifyError(err, "get")
	}
	if len(out.Item) == 0 {
		return nil, session.ErrSessionNotFound
	}
	return s.decode(out.Item)
}

func (s *Store) Put(ctx context.Context, sess *session.Session) error {
	item, err := s.encode(sess)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	return classifyError(err, "put")
}

// Update writes the session only if the item still exists.
func (s *Store) Update(ctx context.Context, sess *session.Session) error {
	item, err := s.encode(sess)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": s.partitionKey},
	})

	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return session.ErrSessionNotFound
	}
	return classifyError(err, "update")
}

func (s *Store) Delete(ctx context.Context, partition, token string) (bool, error) {
	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.table),
		Key:          s.key(partition, token),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, classifyError(err, "delete")
	}
	return len(out.Attributes) > 0, nil
}

func (s *Store) Query(ctx context.Context, partition string) ([]*session.Session, error) {
	items, err := s.queryPartition(ctx, partition, false)
	if err != nil {
		return nil, err
	}

	out := make([]*session.Session, 0, len(items))
	for _, item := range items {
		sess, err := s.decode(item)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, nil
}

// DeleteAll removes the partition in batches of 25. Items that DynamoDB
// reports as unprocessed are resubmitted with exponential backoff.
func (s *Store) DeleteAll(ctx context.Context, partition string) (bool, error) {
	keys, err := s.queryPartition(ctx, partition, true)
	if err != nil {
		return false, err
	}
	if len(keys) == 0 {
		return false, nil
	}

	for i := 0; i < len(keys); i += batchSize {
		end := min(i+batchSize, len(keys))
		requests := make([]types.WriteRequest, 0, end-i)
		for _, k := range keys[i:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: k},
			})
		}
		if err := s.batchDelete(ctx, requests); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *Store) batchDelete(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{s.table: requests}
	delay := s.retryBaseDelay

	for attempt := 0; ; attempt++ {
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: pending,
		})
		if err != nil {
			return classifyError(err, "batch delete")
		}
		if len(out.UnprocessedItems[s.table]) == 0 {
			return nil
		}
		if attempt >= s.maxBatchRetries {
			return errors.Join(session.ErrStoreUnavailable, ErrUnprocessedItems)
		}

		pending = out.UnprocessedItems
		select {
		case <-ctx.Done():
			return classifyError(ctx.Err(), "batch delete")
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// queryPartition loads every item of the partition. With keysOnly only the
// key attributes are returned.
func (s *Store) queryPartition(ctx context.Context, partition string, keysOnly bool) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    aws.String("#pk = :pk"),
		ExpressionAttributeNames:  map[string]string{"#pk": s.partitionKey},
		ExpressionAttributeValues: map[string]types.AttributeValue{":pk": &types.AttributeValueMemberS{Value: partition}},
		ConsistentRead:            aws.Bool(true),
	}
	if keysOnly {
		input.ProjectionExpression = aws.String("#pk, #sk")
		input.ExpressionAttributeNames["#sk"] = s.sortKey
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyError(err, "query")
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

func (s *Store) encode(sess *session.Session) (map[string]types.AttributeValue, error) {
	if sess == nil || sess.Token == "" || sess.Partition == "" {
		return nil, session.ErrMalformedToken
	}

	item, err := attributevalue.MarshalMap(record{
		CSRFToken:      sess.CSRFToken,
		Data:           sess.Data,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		ExpiresAt:      sess.ExpiresAt,
		TTL:            sess.TTL,
	})
	if err != nil {
		return nil, errors.Join(ErrEncodeSession, err)
	}

	item[s.partitionKey] = &types.AttributeValueMemberS{Value: sess.Partition}
	item[s.sortKey] = &types.AttributeValueMemberS{Value: sess.Token}
	item[s.ttlAttribute] = &types.AttributeValueMemberN{Value: strconv.FormatInt(sess.ExpiresAt, 10)}
	return item, nil
}

func (s *Store) decode(item map[string]types.AttributeValue) (*session.Session, error) {
	var rec record
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, errors.Join(session.ErrStoreUnavailable, ErrDecodeSession, err)
	}

	var partition, token string
	if err := attributevalue.Unmarshal(item[s.partitionKey], &partition); err != nil {
		return nil, errors.Join(session.ErrStoreUnavailable, ErrDecodeSession, err)
	}
	if err := attributevalue.Unmarshal(item[s.sortKey], &token); err != nil {
		return nil, errors.Join(session.ErrStoreUnavailable, ErrDecodeSession, err)
	}

	return &session.Session{
		Token:          token,
		CSRFToken:      rec.CSRFToken,
		Partition:      partition,
		Data:           rec.Data,
		CreatedAt:      rec.CreatedAt,
		LastAccessedAt: rec.LastAccessedAt,
		ExpiresAt:      rec.ExpiresAt,
		TTL:            rec.TTL,
	}, nil
}
