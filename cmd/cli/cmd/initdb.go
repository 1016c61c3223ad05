package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbaris/grain-price-analyzer/database"
)

func newInitDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: fmt.Sprintf("create the %s schema if missing", database.SchemaName),
		RunE: func(c *cobra.Command, _ []string) error {
			db, err := connectRawDB(c.Context())
			if err != nil {
				return err
			}
			defer db.Shutdown()

			created, err := db.Init()
			if err != nil {
				return err
			}

			if created {
				fmt.Fprintf(c.OutOrStdout(), "schema %s created.\n", database.SchemaName)
			} else {
				fmt.Fprintf(c.OutOrStdout(), "schema %s already exists, nothing to do.\n", database.SchemaName)
			}

			return nil
		},
	}
}
