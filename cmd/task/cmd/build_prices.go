package cmd

import (
	"fmt"
	"log/slog"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	usecase "github.com/jbaris/grain-price-analyzer/internal/usecase/task"
)

func newBuildPricesCmd(injector *do.Injector) *cobra.Command {
	c := &cobra.Command{
		Use:   "build-prices",
		Short: "building the prices CSV from board prices and the exchange series",
		RunE: func(c *cobra.Command, args []string) error {
			prices, err := getPathFlag(c, injector, "prices", "prices_ggsa.json")
			if err != nil {
				return err
			}

			exchange, err := getPathFlag(c, injector, "exchange", "dolar_exchange_complete.json")
			if err != nil {
				return err
			}

			dest, err := getPathFlag(c, injector, "dest", "prices.csv")
			if err != nil {
				return err
			}

			startDate, err := c.Flags().GetString("start-date")
			if err != nil {
				return err
			}

			uc := usecase.NewBuildPricesTaskUseCase(do.MustInvoke[*slog.Logger](injector))
			resp, err := uc.BuildPrices(c.Context(), &usecase.BuildPricesRequest{
				PricesPath:   prices,
				ExchangePath: exchange,
				DestPath:     dest,
				StartDate:    startDate,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(c.OutOrStdout(), "%d rows written to %s (%d dates with prices, %d without exchange rate)\n",
				resp.Written, dest, resp.Dates, resp.MissingRate)

			return nil
		},
	}

	c.Flags().String("prices", "", "board prices JSON (default <DATA_DIR>/prices_ggsa.json)")
	c.Flags().String("exchange", "", "exchange series JSON (default <DATA_DIR>/dolar_exchange_complete.json)")
	c.Flags().String("dest", "", "output CSV (default <DATA_DIR>/prices.csv)")
	c.Flags().String("start-date", usecase.DefaultPricesStartDate, "first date to include (YYYY-MM-DD)")

	return c
}
