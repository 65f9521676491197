// Package cli holds the storefront command tree.
package cli

import (
	"fmt"

	"github.com/Zhima-Mochi/corralon-storefront/internal/config"
	"github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"
	"github.com/Zhima-Mochi/corralon-storefront/internal/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runtime is what every subcommand gets after the persistent pre-run.
type runtime struct {
	cfg    *config.Config
	zap    *zap.Logger
	logger observability.Logger
}

func NewRootCommand() *cobra.Command {
	var (
		configPath string
		rt         runtime
	)

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Multi-tenant building-supplies storefront",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			zl, err := logging.NewLogger(logging.Options{
				Service: cfg.Service,
				Env:     cfg.Env,
				Level:   cfg.Log.Level,
				File:    cfg.Log.File,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(zl)
			rt = runtime{cfg: cfg, zap: zl, logger: zaplogger.New(zl)}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if rt.zap != nil {
				_ = rt.zap.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")

	root.AddCommand(
		newServeCommand(&rt),
		newMigrateCommand(&rt),
		newSeedCommand(&rt),
	)
	return root
}
