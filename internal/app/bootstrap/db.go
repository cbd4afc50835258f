// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/metacode22/study-somoim/internal/app/store/activity"
	"github.com/metacode22/study-somoim/internal/app/store/audit"
	"github.com/metacode22/study-somoim/internal/app/store/oauthstate"
	"github.com/metacode22/study-somoim/internal/app/system/timeouts"
	"github.com/metacode22/study-somoim/internal/app/system/validators"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the Mongo client used for OAuth state, audit and activity
// records. Everything else lives behind the backend API.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetAppName("study-somoim")
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	if appCfg.MongoMinPoolSize > 0 {
		opts.SetMinPoolSize(appCfg.MongoMinPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Ping(), logger, "mongo ping")
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize),
	)
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the local collections with their validators and
// indexes.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase
	if err := validators.EnsureAll(ctx, db, logger); err != nil {
		return fmt.Errorf("validators: %w", err)
	}

	for _, s := range []struct {
		name   string
		ensure func(context.Context) error
	}{
		{oauthstate.CollectionName, oauthstate.New(db).EnsureIndexes},
		{audit.CollectionName, audit.New(db).EnsureIndexes},
		{activity.CollectionName, activity.New(db).EnsureIndexes},
	} {
		if err := s.ensure(ctx); err != nil {
			logger.Error("index setup failed", zap.String("collection", s.name), zap.Error(err))
			return fmt.Errorf("indexes for %s: %w", s.name, err)
		}
	}
	return nil
}
