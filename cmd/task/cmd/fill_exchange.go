package cmd

import (
	"fmt"
	"log/slog"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	"github.com/jbaris/grain-price-analyzer/internal/api/bna"
	usecase "github.com/jbaris/grain-price-analyzer/internal/usecase/task"
)

func newFillExchangeCmd(injector *do.Injector) *cobra.Command {
	c := &cobra.Command{
		Use:   "fill-exchange",
		Short: "filling the exchange series up to today with Banco Nacion quotes",
		RunE: func(c *cobra.Command, args []string) error {
			src, err := getPathFlag(c, injector, "src", "dolar_exchange.json")
			if err != nil {
				return err
			}

			dest, err := getPathFlag(c, injector, "dest", "dolar_exchange_complete.json")
			if err != nil {
				return err
			}

			concurrency, err := c.Flags().GetInt("concurrency")
			if err != nil {
				return err
			}

			uc := usecase.NewFillExchangeTaskUseCase(
				do.MustInvoke[*bna.Client](injector),
				do.MustInvoke[*slog.Logger](injector),
			)
			resp, err := uc.FillExchange(c.Context(), &usecase.FillExchangeRequest{
				SrcPath:     src,
				DestPath:    dest,
				Concurrency: concurrency,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(c.OutOrStdout(), "%d days checked: %d quotes fetched, %d fallbacks, %d records written to %s\n",
				resp.Days, resp.Fetched, resp.Fallbacks, resp.Records, dest)

			return nil
		},
	}

	c.Flags().String("src", "", "exchange series to complete (default <DATA_DIR>/dolar_exchange.json)")
	c.Flags().String("dest", "", "completed exchange series (default <DATA_DIR>/dolar_exchange_complete.json)")
	c.Flags().Int("concurrency", usecase.DefaultFillConcurrency, "number of days fetched in parallel")

	return c
}
