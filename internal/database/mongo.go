// Package database owns the connection to the document store.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names
const (
	ShopsCollection    = "shops"
	PackagesCollection = "packages"
	ProductsCollection = "products"
)

// Mongo wraps a connected client and the database the services use
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client, verifies it with a ping, and selects dbName
func Connect(ctx context.Context, uri, dbName string, timeout time.Duration) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Mongo{client: client, db: client.Database(dbName)}, nil
}

// Database returns the selected database
func (m *Mongo) Database() *mongo.Database {
	return m.db
}

// Collection returns a collection of the selected database
func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

// Ping checks the primary is reachable
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Disconnect closes the client and its pool
func (m *Mongo) Disconnect(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
