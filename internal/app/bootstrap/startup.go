// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"sync"

	"github.com/dalemusser/twfhub/internal/app/resources"
	"github.com/dalemusser/twfhub/internal/app/services/readtracking"
	"github.com/dalemusser/twfhub/internal/app/services/stack"
	"github.com/dalemusser/twfhub/internal/app/store/audit"
	"github.com/dalemusser/twfhub/internal/app/system/auditlog"
	"github.com/dalemusser/twfhub/internal/app/system/timeouts"
	"github.com/dalemusser/twfhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// services is the process-wide forum stack shared by Startup, BuildHandler
// and Shutdown.
type services struct {
	stack   *stack.Stack
	events  *auditlog.Logger
	cleanup *workers.ReadCleanup
}

var (
	svcMu sync.Mutex
	svc   *services
)

func newServices(appCfg AppConfig, db *mongo.Database, logger *zap.Logger) *services {
	events := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth: appCfg.AuditLogAuth,
		Twf:  appCfg.AuditLogTwf,
	})
	st := stack.New(db, readtracking.Config{
		TrackReadPosts:          appCfg.TrackReadPosts,
		AllowForcedReadTracking: appCfg.AllowForcedReadTracking,
		OldPostDays:             appCfg.OldPostDays,
	}, events)
	return &services{stack: st, events: events}
}

// currentServices returns the shared services, building them on first use.
func currentServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *services {
	svcMu.Lock()
	defer svcMu.Unlock()
	if svc == nil {
		svc = newServices(appCfg, deps.MongoDatabase, logger)
	}
	return svc
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Log(logger)
	resources.LoadSharedTemplates()

	s := currentServices(appCfg, deps, logger)
	if cleanupEnabled(appCfg) {
		s.cleanup = workers.NewReadCleanup(s.stack.Reading, logger, appCfg.ReadCleanupInterval)
		s.cleanup.Start()
	} else {
		logger.Info("read cleanup worker disabled",
			zap.Bool("track_read_posts", appCfg.TrackReadPosts),
			zap.Int("old_post_days", appCfg.OldPostDays),
			zap.Duration("interval", appCfg.ReadCleanupInterval))
	}
	return nil
}

// cleanupEnabled reports whether stale read marks have anything to prune.
func cleanupEnabled(appCfg AppConfig) bool {
	return appCfg.TrackReadPosts && appCfg.OldPostDays > 0 && appCfg.ReadCleanupInterval > 0
}
