package kv

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps each key as a document {_id, data, updated_at}.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoOptions configures NewMongoStore.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

type mongoDoc struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, &OpError{Backend: "mongo", Op: "connect", Err: err, Transient: true}
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &OpError{Backend: "mongo", Op: "ping", Err: err, Transient: true}
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		doc   mongoDoc
		found bool
	)
	err := RetryWithBackoff(ctx, func() error {
		err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			found = false
			return nil
		}
		if err != nil {
			return mongoError("get", key, err)
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return nil, false, err
	}
	return doc.Data, true, nil
}

func (s *MongoStore) Set(ctx context.Context, key string, data []byte) error {
	return RetryWithBackoff(ctx, func() error {
		_, err := s.coll.UpdateOne(ctx,
			bson.M{"_id": key},
			bson.M{"$set": bson.M{"data": data, "updated_at": time.Now().UTC()}},
			options.Update().SetUpsert(true),
		)
		return mongoError("set", key, err)
	})
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, func() error {
		_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
		return mongoError("delete", key, err)
	})
}

func (s *MongoStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := RetryWithBackoff(ctx, func() error {
		filter := bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
		cur, err := s.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return mongoError("keys", prefix, err)
		}
		var docs []mongoDoc
		if err := cur.All(ctx, &docs); err != nil {
			return mongoError("keys", prefix, err)
		}
		keys = keys[:0]
		for _, d := range docs {
			keys = append(keys, d.Key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return filterSorted(keys, prefix), nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// mongoError wraps a driver error. Errors labelled NetworkError and
// timeouts are transient.
func mongoError(op, key string, err error) error {
	return classify("mongo", op, key, err, func(err error) bool {
		return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
	})
}

var _ Store = (*MongoStore)(nil)
