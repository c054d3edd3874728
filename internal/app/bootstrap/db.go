// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/poketwo/forms/internal/app/store/submissions"
)

// ConnectDB establishes the Mongo connections the app depends on.
//
// The community connection is always made; the Pokétwo connection is a
// second client only when a separate URI is configured, otherwise the
// community client is shared.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	community, err := connectMongo(ctx, appCfg.MongoURI)
	if err != nil {
		return DBDeps{}, fmt.Errorf("community mongo connect: %w", err)
	}

	deps := DBDeps{
		CommunityMongoClient:   community,
		CommunityMongoDatabase: community.Database(appCfg.MongoDatabase),
	}

	if appCfg.PoketwoMongoURI == "" || appCfg.PoketwoMongoURI == appCfg.MongoURI {
		deps.PoketwoMongoClient = community
	} else {
		poketwo, err := connectMongo(ctx, appCfg.PoketwoMongoURI)
		if err != nil {
			_ = community.Disconnect(ctx)
			return DBDeps{}, fmt.Errorf("poketwo mongo connect: %w", err)
		}
		deps.PoketwoMongoClient = poketwo
	}
	deps.PoketwoMongoDatabase = deps.PoketwoMongoClient.Database(appCfg.PoketwoMongoDatabase)

	logger.Info("connected to MongoDB",
		zap.String("community_db", appCfg.MongoDatabase),
		zap.String("poketwo_db", appCfg.PoketwoMongoDatabase))
	return deps, nil
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

// EnsureSchema sets up indexes as needed.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := submissions.New(deps.CommunityMongoDatabase).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("submission indexes: %w", err)
	}
	return nil
}
