package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

const mongoTimeout = 10 * time.Second

// MongoConfig captures the minimal settings required to establish a MongoDB
// connection.
type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// ConnectMongo establishes a MongoDB client, verifies connectivity with a
// ping, and returns both the client and the selected database.
func ConnectMongo(ctx context.Context, cfg MongoConfig) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = mongoTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

type stateDoc struct {
	ID    string `bson:"_id"`
	Value string `bson:"value"`
}

// MongoStore persists terminal state in a single collection, one document
// per key, scoped by terminal id for fleets sharing a database.
type MongoStore struct {
	coll       *mongo.Collection
	terminalID string
}

func NewMongoStore(db *mongo.Database, terminalID string) *MongoStore {
	return &MongoStore{coll: db.Collection("terminal_state"), terminalID: terminalID}
}

func (m *MongoStore) docID(key string) string {
	return m.terminalID + ":" + key
}

func (m *MongoStore) Get(ctx context.Context, key string) (string, error) {
	var doc stateDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": m.docID(key)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ports.ErrKeyNotFound
		}
		return "", fmt.Errorf("mongo store: get %s: %w", key, err)
	}
	return doc.Value, nil
}

func (m *MongoStore) Set(ctx context.Context, key, value string) error {
	doc := stateDoc{ID: m.docID(key), Value: value}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return fmt.Errorf("mongo store: set %s: %w", key, err)
	}
	return nil
}

func (m *MongoStore) Delete(ctx context.Context, key string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": m.docID(key)})
	if err != nil {
		return fmt.Errorf("mongo store: delete %s: %w", key, err)
	}
	if res.DeletedCount == 0 {
		return ports.ErrKeyNotFound
	}
	return nil
}
