package cmd

import (
	"fmt"
	"log/slog"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	usecase "github.com/jbaris/grain-price-analyzer/internal/usecase/task"
)

func newSanitizePricesCmd(injector *do.Injector) *cobra.Command {
	c := &cobra.Command{
		Use:   "sanitize-prices",
		Short: "removing isolated outliers from the prices CSV",
		RunE: func(c *cobra.Command, args []string) error {
			src, err := getPathFlag(c, injector, "src", "prices.csv")
			if err != nil {
				return err
			}

			dest, err := getPathFlag(c, injector, "dest", "prices_sanitized.csv")
			if err != nil {
				return err
			}

			threshold, err := c.Flags().GetFloat64("threshold")
			if err != nil {
				return err
			} else if !(threshold > 0) {
				return fmt.Errorf("invalid threshold %v: must be positive", threshold)
			}

			uc := usecase.NewSanitizePricesTaskUseCase(do.MustInvoke[*slog.Logger](injector))
			resp, err := uc.SanitizePrices(c.Context(), &usecase.SanitizePricesRequest{
				SrcPath:   src,
				DestPath:  dest,
				Threshold: threshold,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(c.OutOrStdout(), "%d rows: %d kept, %d discarded, written to %s\n",
				resp.Total, resp.Kept, resp.Discarded, dest)

			return nil
		},
	}

	c.Flags().String("src", "", "prices CSV (default <DATA_DIR>/prices.csv)")
	c.Flags().String("dest", "", "sanitized CSV (default <DATA_DIR>/prices_sanitized.csv)")
	c.Flags().Float64("threshold", usecase.DefaultOutlierThreshold, "percentage change considered a jump")

	return c
}
