// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"os"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := os.MkdirAll(appCfg.UploadsDir, 0o755); err != nil {
		logger.Error("cannot create uploads directory",
			zap.String("dir", appCfg.UploadsDir),
			zap.Error(err))
		return err
	}
	return nil
}
