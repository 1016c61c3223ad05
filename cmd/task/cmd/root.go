package cmd

import (
	"path/filepath"

	"github.com/samber/do"
	"github.com/spf13/cobra"
)

// Paths locates the dataset files shared by the pipeline commands.
type Paths struct {
	DataDir         string
	ExchangeDestURL string
	PricesDestURL   string
}

func (p Paths) File(name string) string {
	return filepath.Join(p.DataDir, name)
}

func NewRootCmd(injector *do.Injector) *cobra.Command {
	c := &cobra.Command{
		Use:           "task",
		Short:         "grain-price-analyzer task",
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(c *cobra.Command, args []string) {
			c.Help()
		},
	}

	c.AddCommand(newFetchDataCmd(injector))
	c.AddCommand(newFillExchangeCmd(injector))
	c.AddCommand(newBuildPricesCmd(injector))
	c.AddCommand(newSanitizePricesCmd(injector))
	c.AddCommand(newMergeEventsCmd(injector))
	c.AddCommand(newImportPricesCmd(injector))

	return c
}

// getPathFlag returns the flag value, or the named file in the data
// directory when the flag is not set.
func getPathFlag(c *cobra.Command, injector *do.Injector, flag string, defaultName string) (string, error) {
	path, err := c.Flags().GetString(flag)
	if err != nil {
		return "", err
	} else if path != "" {
		return path, nil
	}

	return do.MustInvoke[Paths](injector).File(defaultName), nil
}
