// -- cmd/setup.go --
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/acheron9x/cartpilot/internal/config"
	"github.com/acheron9x/cartpilot/pkg/browser"
	"github.com/acheron9x/cartpilot/pkg/interact"
	"github.com/acheron9x/cartpilot/pkg/storefront"
)

// shutdownGrace bounds how long browser teardown may take once a run ends.
const shutdownGrace = 10 * time.Second

// runEnv bundles everything a command needs to drive one storefront.
type runEnv struct {
	cfg     *config.Config
	site    *storefront.Site
	manager *browser.Manager
	ix      *interact.Interactor
	logger  *zap.Logger
}

// setupEnv resolves the requested site profile, launches the browser and
// wires an interactor over a fresh session. The returned cleanup is safe to
// call exactly once.
func setupEnv(ctx context.Context, siteName string, logger *zap.Logger) (*runEnv, func(), error) {
	cfg, err := config.NewConfigFromViper(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}

	if siteName == "" {
		if len(cfg.Sites) == 1 {
			for name := range cfg.Sites {
				siteName = name
			}
		} else {
			return nil, nil, fmt.Errorf("--site is required when the config defines %d site profiles", len(cfg.Sites))
		}
	}
	siteCfg, ok := cfg.Sites[siteName]
	if !ok {
		return nil, nil, fmt.Errorf("site %q is not defined in the configuration", siteName)
	}
	site, err := storefront.NewSite(siteName, siteCfg)
	if err != nil {
		return nil, nil, err
	}

	manager, err := browser.NewManager(ctx, logger, cfg.Browser)
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}
	session, err := manager.NewSession(ctx)
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		manager.Shutdown(shutdownCtx)
		return nil, nil, fmt.Errorf("opening session: %w", err)
	}

	ix, err := interact.New(session, interact.OptionsFromConfig(cfg.Interaction), logger)
	if err != nil {
		session.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		manager.Shutdown(shutdownCtx)
		return nil, nil, err
	}

	cleanup := func() {
		if err := session.Close(); err != nil {
			logger.Warn("Failed to close browser session.", zap.Error(err))
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := manager.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Browser shutdown did not complete cleanly.", zap.Error(err))
		}
	}
	env := &runEnv{cfg: cfg, site: site, manager: manager, ix: ix, logger: logger}
	return env, cleanup, nil
}
