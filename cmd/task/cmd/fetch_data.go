package cmd

import (
	"fmt"
	"log/slog"

	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/jbaris/grain-price-analyzer/internal/api/datosgobar"
	"github.com/jbaris/grain-price-analyzer/internal/api/ggsa"
	usecase "github.com/jbaris/grain-price-analyzer/internal/usecase/task"
)

func newFetchDataCmd(injector *do.Injector) *cobra.Command {
	c := &cobra.Command{
		Use:   "fetch-data",
		Short: "fetching data from a source",
		Run: func(c *cobra.Command, args []string) {
			c.Help()
		},
	}

	c.AddCommand(newFetchDataDatosGobArCmd(injector))
	c.AddCommand(newFetchDataGGSACmd(injector))

	return c
}

func newFetchDataDatosGobArCmd(injector *do.Injector) *cobra.Command {
	c := &cobra.Command{
		Use:   "datosgobar",
		Short: "fetching the official exchange rate series from datos.gob.ar",
		RunE: func(c *cobra.Command, args []string) error {
			return newFetchDataCommand(c, injector, usecase.SourceDatosGobAr, usecase.DataTypeSeries).Execute()
		},
	}

	c.Flags().String("dest-url", "", "destination url to save the fetched data (default EXCHANGE_DEST_URL)")
	c.Flags().StringSlice("series-id", nil, fmt.Sprintf("series ids to fetch (default %s)", datosgobar.DefaultSeriesID))
	c.Flags().String("start-date", "", fmt.Sprintf("first period of the series (default %s)", datosgobar.DefaultStartDate))
	c.Flags().Int("limit", 0, fmt.Sprintf("maximum number of rows (default %d)", datosgobar.DefaultLimit))

	return c
}

func newFetchDataGGSACmd(injector *do.Injector) *cobra.Command {
	c := &cobra.Command{
		Use:   "ggsa",
		Short: "fetching the board prices (pizarra) from ggsa.com.ar",
		RunE: func(c *cobra.Command, args []string) error {
			return newFetchDataCommand(c, injector, usecase.SourceGGSA, usecase.DataTypePizarra).Execute()
		},
	}

	c.Flags().String("dest-url", "", "destination url to save the fetched data (default PRICES_DEST_URL, stdout when empty)")
	c.Flags().String("board", "", fmt.Sprintf("board to fetch (default %s)", ggsa.DefaultBoard))
	c.Flags().String("start-date", "", fmt.Sprintf("first date to fetch (default %s)", ggsa.DefaultStartDate))

	return c
}

type fetchDataCommand struct {
	cmd      *cobra.Command
	injector *do.Injector
	source   string
	dataType string
}

func newFetchDataCommand(cmd *cobra.Command, injector *do.Injector, source string, dataType string) *fetchDataCommand {
	return &fetchDataCommand{cmd: cmd, injector: injector, source: source, dataType: dataType}
}

func (c *fetchDataCommand) Execute() error {
	paths := do.MustInvoke[Paths](c.injector)

	destURL, err := c.cmd.Flags().GetString("dest-url")
	if err != nil {
		return err
	}

	req := &usecase.FetchDataRequest{
		Source:   c.source,
		DataType: c.dataType,
		DestURL:  destURL,
	}

	startDate, err := c.getOptionStringFlag("start-date")
	if err != nil {
		return err
	}
	req.StartDate = startDate

	switch c.source {
	case usecase.SourceDatosGobAr:
		if req.DestURL == "" {
			req.DestURL = paths.ExchangeDestURL
		}

		seriesIDs, err := c.cmd.Flags().GetStringSlice("series-id")
		if err != nil {
			return err
		}
		req.SeriesIDs = seriesIDs

		limit, err := c.getOptionIntFlag("limit")
		if err != nil {
			return err
		}
		req.Limit = limit
	case usecase.SourceGGSA:
		if req.DestURL == "" {
			req.DestURL = paths.PricesDestURL
		}

		board, err := c.getOptionStringFlag("board")
		if err != nil {
			return err
		}
		req.Board = board
	}

	uc := usecase.NewFetchDataTaskUseCase(
		do.MustInvoke[*datosgobar.Client](c.injector),
		do.MustInvoke[*ggsa.Client](c.injector),
		c.cmd.OutOrStdout(),
		do.MustInvoke[*slog.Logger](c.injector),
	)
	_, err = uc.FetchData(c.cmd.Context(), req)
	if err != nil {
		return err
	}

	return nil
}

func (c *fetchDataCommand) getOptionStringFlag(flag string) (*string, error) {
	if !c.cmd.Flags().Changed(flag) {
		return nil, nil
	}

	s, err := c.cmd.Flags().GetString(flag)
	if err != nil {
		return nil, err
	} else if s == "" {
		return nil, nil
	}

	return lo.ToPtr(s), nil
}

func (c *fetchDataCommand) getOptionIntFlag(flag string) (*int, error) {
	if !c.cmd.Flags().Changed(flag) {
		return nil, nil
	}

	n, err := c.cmd.Flags().GetInt(flag)
	if err != nil {
		return nil, err
	} else if n <= 0 {
		return nil, fmt.Errorf("invalid %s: must be positive", flag)
	}

	return lo.ToPtr(n), nil
}
