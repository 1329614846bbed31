package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/camp-scheduler/internal/config"
)

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List resource categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			categories, err := apiClient(cfg).ResourceCategories(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY ID\tNAME")
			for _, rc := range categories {
				fmt.Fprintf(w, "%d\t%s\n", rc.ResourceCategoryID, localizedName(rc.LocalizedValues))
			}
			return w.Flush()
		},
	}
}
