package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/camp-scheduler/internal/config"
)

func newLocationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locations",
		Short: "List bookable resource locations (parks)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			locations, err := apiClient(cfg).ResourceLocations(cmd.Context())
			if err != nil {
				return err
			}
			sort.Slice(locations, func(i, j int) bool {
				return localizedName(locations[i].LocalizedValues) < localizedName(locations[j].LocalizedValues)
			})

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LOCATION ID\tNAME")
			for _, loc := range locations {
				fmt.Fprintf(w, "%d\t%s\n", loc.ResourceLocationID, localizedName(loc.LocalizedValues))
			}
			return w.Flush()
		},
	}
}
