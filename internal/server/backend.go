package server

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/cubeshop/app/repositories"
	"github.com/shashiranjanraj/cubeshop/config"
	"github.com/shashiranjanraj/cubeshop/database/migrations"
	"github.com/shashiranjanraj/cubeshop/pkg/auth"
	"github.com/shashiranjanraj/cubeshop/pkg/database"
	"github.com/shashiranjanraj/cubeshop/pkg/logger"
)

// Backend is the opened document store. Commands that touch data open one,
// use Store and Close it.
type Backend struct {
	Store repositories.Store
	conn  *database.Conn
}

// Open connects the store selected by DB_DRIVER.
func Open(ctx context.Context) (*Backend, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if config.DatabaseDriver() == "memory" {
		logger.Warn("using the in-memory store; data is lost on exit")
		return &Backend{Store: repositories.NewMemoryStore()}, nil
	}

	conn, err := database.Connect(ctx, config.MongoURI(), config.DatabaseName())
	if err != nil {
		return nil, err
	}
	logger.Info("connected to mongodb", "database", config.DatabaseName())

	return &Backend{Store: repositories.NewMongoStore(conn.Database()), conn: conn}, nil
}

// Migrate creates the indexes the store relies on. The memory store
// enforces them itself.
func (b *Backend) Migrate(ctx context.Context) error {
	if b.conn == nil {
		return nil
	}
	return migrations.Run(ctx, b.conn.Database())
}

func (b *Backend) Close(ctx context.Context) {
	if b.conn == nil {
		return
	}
	if err := b.conn.Close(ctx); err != nil {
		logger.Error("closing database", "error", err)
	}
}

// NewVerifier builds the identity verifier selected by AUTH_MODE.
func NewVerifier() (auth.Verifier, error) {
	switch config.AuthMode() {
	case "hmac":
		return auth.NewHMACVerifier(config.JWTSecret()), nil
	default:
		projectID := config.FirebaseProjectID()
		if projectID == "" {
			return nil, fmt.Errorf("auth: FIREBASE_PROJECT_ID or FIREBASE_SERVICE_ACCOUNT is required in firebase mode")
		}
		return auth.NewFirebaseVerifier(projectID, config.AuthJWKSURL()), nil
	}
}
