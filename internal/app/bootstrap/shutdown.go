// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down DB connections and other resources.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.PoketwoMongoClient != nil && deps.PoketwoMongoClient != deps.CommunityMongoClient {
		logger.Info("disconnecting Pokétwo MongoDB client")
		if err := deps.PoketwoMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	if deps.CommunityMongoClient != nil {
		logger.Info("disconnecting community MongoDB client")
		if err := deps.CommunityMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
