package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

// document is the stored form of a session. The token is the primary key
// and the payload is a native sub-document, so fields under "data" can be
// queried and indexed.
type document struct {
	Token          string    `bson:"_id"`
	CSRFToken      string    `bson:"csrf_token"`
	Partition      string    `bson:"partition"`
	Data           bson.M    `bson:"data"`
	CreatedAt      int64     `bson:"created_at"`
	LastAccessedAt int64     `bson:"last_accessed_at"`
	ExpiresAt      int64     `bson:"expires_at"`
	TTL            int64     `bson:"ttl_seconds"`
	ExpireAt       time.Time `bson:"expire_at"`
}

// Store implements session.Store on a MongoDB collection.
type Store struct {
	coll *mongo.Collection
}

// NewStore creates a session store on coll. Call EnsureIndexes once at
// startup. Nested documents in session data decode as maps.
func NewStore(coll *mongo.Collection) *Store {
	opts := options.Collection().SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	return &Store{coll: coll.Database().Collection(coll.Name(), opts)}
}

// NewStoreFromConfig creates a store on the database and collection named
// in cfg.
func NewStoreFromConfig(client *mongo.Client, cfg Config) *Store {
	return NewStore(client.Database(cfg.Database).Collection(cfg.Collection))
}

// EnsureIndexes creates the partition index used by Query and DeleteAll,
// and a TTL index that lets MongoDB purge expired sessions.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "partition", Value: 1}}},
		{
			Keys:    bson.D{{Key: "expire_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return errors.Join(ErrEnsureIndexes, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, partition, token string) (*session.Session, error) {
	var doc document
	err := s.coll.FindOne(ctx, key(partition, token)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Join(session.ErrStoreUnavailable, err)
	}
	return doc.session(), nil
}

func (s *Store) Put(ctx context.Context, sess *session.Session) error {
	doc, err := newDocument(sess)
	if err != nil {
		return err
	}

	_, err = s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.Token}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Join(session.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, sess *session.Session) error {
	doc, err := newDocument(sess)
	if err != nil {
		return err
	}

	res, err := s.coll.ReplaceOne(ctx, key(doc.Partition, doc.Token), doc)
	if err != nil {
		return errors.Join(session.ErrStoreUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, partition, token string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, key(partition, token))
	if err != nil {
		return false, errors.Join(session.ErrStoreUnavailable, err)
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) Query(ctx context.Context, partition string) ([]*session.Session, error) {
	cur, err := s.coll.Find(ctx, bson.D{{Key: "partition", Value: partition}})
	if err != nil {
		return nil, errors.Join(session.ErrStoreUnavailable, err)
	}

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Join(session.ErrStoreUnavailable, err)
	}

	out := make([]*session.Session, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.session())
	}
	return out, nil
}

func (s *Store) DeleteAll(ctx context.Context, partition string) (bool, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{{Key: "partition", Value: partition}})
	if err != nil {
		return false, errors.Join(session.ErrStoreUnavailable, err)
	}
	return res.DeletedCount > 0, nil
}

func key(partition, token string) bson.D {
	return bson.D{
		{Key: "_id", Value: token},
		{Key: "partition", Value: partition},
	}
}

func newDocument(sess *session.Session) (*document, error) {
	if sess == nil || sess.Token == "" || sess.Partition == "" {
		return nil, session.ErrMalformedToken
	}

	data := bson.M{}
	for k, v := range sess.Data {
		if _, _, err := bson.MarshalValue(v); err != nil {
			return nil, errors.Join(ErrEncodeSession, err)
		}
		data[k] = v
	}

	return &document{
		Token:          sess.Token,
		CSRFToken:      sess.CSRFToken,
		Partition:      sess.Partition,
		Data:           data,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		ExpiresAt:      sess.ExpiresAt,
		TTL:            sess.TTL,
		ExpireAt:       sess.ExpiresTime().UTC(),
	}, nil
}

func (d *document) session() *session.Session {
	sess := &session.Session{
		Token:          d.Token,
		CSRFToken:      d.CSRFToken,
		Partition:      d.Partition,
		CreatedAt:      d.CreatedAt,
		LastAccessedAt: d.LastAccessedAt,
		ExpiresAt:      d.ExpiresAt,
		TTL:            d.TTL,
	}
	if len(d.Data) > 0 {
		sess.Data = map[string]any(d.Data)
	}
	return sess
}
