package cmd

import (
	"fmt"
	"log/slog"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	usecase "github.com/jbaris/grain-price-analyzer/internal/usecase/task"
)

func newMergeEventsCmd(injector *do.Injector) *cobra.Command {
	c := &cobra.Command{
		Use:   "merge-events",
		Short: "merging regular and special events into a single calendar",
		RunE: func(c *cobra.Command, args []string) error {
			regular, err := getPathFlag(c, injector, "regular", "events_regular.json")
			if err != nil {
				return err
			}

			special, err := getPathFlag(c, injector, "special", "events_special.json")
			if err != nil {
				return err
			}

			dest, err := getPathFlag(c, injector, "dest", "events_all.json")
			if err != nil {
				return err
			}

			fromYear, err := c.Flags().GetInt("from-year")
			if err != nil {
				return err
			}

			uc := usecase.NewMergeEventsTaskUseCase(do.MustInvoke[*slog.Logger](injector))
			resp, err := uc.MergeEvents(c.Context(), &usecase.MergeEventsRequest{
				RegularPath: regular,
				SpecialPath: special,
				DestPath:    dest,
				FromYear:    fromYear,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(c.OutOrStdout(), "%d events written to %s (regular events repeated for %d-%d)\n",
				resp.Total, dest, resp.FromYear, resp.ToYear)

			return nil
		},
	}

	c.Flags().String("regular", "", "recurring events keyed DD-MM (default <DATA_DIR>/events_regular.json)")
	c.Flags().String("special", "", "one-off events keyed YYYY-MM-DD (default <DATA_DIR>/events_special.json)")
	c.Flags().String("dest", "", "merged events (default <DATA_DIR>/events_all.json)")
	c.Flags().Int("from-year", usecase.DefaultEventsFromYear, "first year regular events are repeated for")

	return c
}
