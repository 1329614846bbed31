package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/camp-scheduler/internal/bccamp"
	"github.com/example/camp-scheduler/internal/config"
)

func newEquipmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "equipment",
		Short: "List equipment categories and their sub-categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			categories, err := apiClient(cfg).Equipment(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EQUIPMENT ID\tSUB ID\tNAME")
			for _, ec := range categories {
				fmt.Fprintf(w, "%d\t\t%s\n", ec.EquipmentCategoryID, localizedName(ec.LocalizedValues))
				for _, sub := range ec.SubEquipmentCategories {
					fmt.Fprintf(w, "\t%d\t%s\n", sub.SubEquipmentCategoryID, localizedName(sub.LocalizedValues))
				}
			}
			return w.Flush()
		},
	}
}

func localizedName(values []bccamp.LocalizedValue) string {
	if len(values) == 0 {
		return ""
	}
	if values[0].ShortName != "" {
		return values[0].ShortName
	}
	return values[0].Name
}
