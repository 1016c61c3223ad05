package cmd

import (
	"fmt"
	"log/slog"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	"github.com/jbaris/grain-price-analyzer/database"
	usecase "github.com/jbaris/grain-price-analyzer/internal/usecase/task"
)

func newImportPricesCmd(injector *do.Injector) *cobra.Command {
	c := &cobra.Command{
		Use:   "import-prices",
		Short: "upserting the sanitized prices into the database",
		RunE: func(c *cobra.Command, args []string) error {
			src, err := getPathFlag(c, injector, "src", "prices_sanitized.csv")
			if err != nil {
				return err
			}

			db, err := do.Invoke[database.DB](injector)
			if err != nil {
				return err
			}
			defer db.Close()

			uc := usecase.NewImportPricesTaskUseCase(db, do.MustInvoke[*slog.Logger](injector))
			resp, err := uc.ImportPrices(c.Context(), &usecase.ImportPricesRequest{SrcPath: src})
			if err != nil {
				return err
			}

			fmt.Fprintf(c.OutOrStdout(), "%d prices imported from %s\n", resp.Imported, src)

			return nil
		},
	}

	c.Flags().String("src", "", "sanitized prices CSV (default <DATA_DIR>/prices_sanitized.csv)")

	return c
}
