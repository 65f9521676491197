package cli

import (
	"errors"

	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"
	"github.com/spf13/cobra"
)

func newMigrateCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.cfg.Storage.Driver == "memory" {
				return errors.New("migrate needs a sqlite or postgres storage driver")
			}
			st, err := openStorage(cmd.Context(), rt.cfg.Storage)
			if err != nil {
				return err
			}
			defer st.Close()

			rt.logger.Info("schema_migrated",
				observability.F("driver", rt.cfg.Storage.Driver),
			)
			return nil
		},
	}
}
