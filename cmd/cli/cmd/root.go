package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jbaris/grain-price-analyzer/database"
)

var errMissingDBConfig = errors.New("database config is nil")

func NewRootCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "cli",
		Short: "grain-price-analyzer operator tool (schema and migrations)",
		Run: func(c *cobra.Command, args []string) {
			c.Help()
		},
	}

	c.AddCommand(newInitDBCmd())
	c.AddCommand(newMigrateCmd())

	return c
}

// connectRawDB opens a RawDB from the config stored in ctx. Callers own the
// returned connection.
func connectRawDB(ctx context.Context) (*database.RawDB, error) {
	config, ok := ctx.Value(database.CTXKeyDBConfig).(database.Config)
	if !ok {
		return nil, errMissingDBConfig
	}

	db := database.NewRawDB(config)
	if err := db.Connect(); err != nil {
		return nil, err
	}

	return db, nil
}
