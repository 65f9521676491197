package cli

import (
	"errors"

	"github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/seed"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"
	"github.com/spf13/cobra"
)

func newSeedCommand(rt *runtime) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load storefronts and products from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.cfg.Storage.Driver == "memory" {
				return errors.New("memory storage does not outlive the seed command; use serve --seed")
			}
			st, err := openStorage(cmd.Context(), rt.cfg.Storage)
			if err != nil {
				return err
			}
			defer st.Close()

			f, err := seed.LoadFile(file)
			if err != nil {
				return err
			}
			res, err := seed.Apply(cmd.Context(), f, st.storefronts, st.products)
			if err != nil {
				return err
			}
			rt.logger.Info("seed_applied",
				observability.F("file", file),
				observability.F("stores", res.Stores),
				observability.F("products", res.Products),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "YAML file with stores and products")
	return cmd
}
