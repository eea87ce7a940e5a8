// Package mongo stores snapshots and sessions as MongoDB documents.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/meeting-buddy/internal/config"
	"github.com/Rrens/meeting-buddy/internal/storage"
)

type document struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// KV implements storage.Backend over a collection keyed by _id
type KV struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open is the storage.Factory for the mongo backend
func Open(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	clientOpts := options.Client().ApplyURI(cfg.Mongo.URI)
	if cfg.Mongo.Timeout > 0 {
		clientOpts.SetConnectTimeout(cfg.Mongo.Timeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	return &KV{
		client: client,
		coll:   client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection),
	}, nil
}

func (k *KV) Name() string { return "mongo" }

func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var doc document
	err := k.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return doc.Value, true, nil
}

func (k *KV) Set(ctx context.Context, key, value string) error {
	doc := document{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := k.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: key}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (k *KV) Remove(ctx context.Context, key string) error {
	if _, err := k.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (k *KV) HealthCheck(ctx context.Context) error {
	return k.client.Ping(ctx, nil)
}

func (k *KV) Close() error {
	return k.client.Disconnect(context.Background())
}
