// Package database owns the MongoDB connection for the process. The server
// opens one Conn at startup and closes it on shutdown; everything else
// receives the *mongo.Database it hands out.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Conn is an open client bound to one database.
type Conn struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, verifies the primary with a ping and selects dbName.
// Returns an error instead of exiting so the caller can shut down cleanly.
func Connect(ctx context.Context, uri, dbName string) (*Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25).
		SetMaxConnIdleTime(2 * time.Minute).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	return &Conn{client: client, db: client.Database(dbName)}, nil
}

// Database returns the selected database handle.
func (c *Conn) Database() *mongo.Database { return c.db }

// Close disconnects the client, waiting at most five seconds for in-flight
// operations.
func (c *Conn) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("database: disconnect: %w", err)
	}
	return nil
}
