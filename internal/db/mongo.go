package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"device-inventory-backend/config"
)

// ConnectMongo creates the single shared client. The driver connects
// lazily, so an unreachable server does not fail here; only a malformed
// URI or invalid option does.
func ConnectMongo(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(ms(cfg.ConnectTimeoutMS)).
		SetSocketTimeout(ms(cfg.SocketTimeoutMS)).
		SetServerSelectionTimeout(ms(cfg.ServerSelectionTimeoutMS))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}
	return client, nil
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
