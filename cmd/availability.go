package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/camp-scheduler/internal/availability"
	"github.com/example/camp-scheduler/internal/config"
	"github.com/example/camp-scheduler/internal/reservation"
)

type searchFlags struct {
	locationIDs    []string
	equipmentID    string
	subEquipmentID string
	dateRanges     []string
	nights         string
	preferWeekend  bool
}

func (f *searchFlags) register(c *cobra.Command) {
	c.Flags().StringSliceVar(&f.locationIDs, "location-ids", nil, "resource location ids (comma-separated)")
	c.Flags().StringVar(&f.equipmentID, "equipment-id", "", "equipment category id")
	c.Flags().StringVar(&f.subEquipmentID, "sub-equipment-id", "", "sub-equipment category id")
	c.Flags().StringSliceVar(&f.dateRanges, "date-ranges", nil, "stay windows as YYYY-MM-DD_YYYY-MM-DD (comma-separated)")
	c.Flags().StringVar(&f.nights, "nights", "2", "number of nights")
	c.Flags().BoolVar(&f.preferWeekend, "prefer-weekend", false, "prefer weekend stays")

	_ = c.MarkFlagRequired("location-ids")
	_ = c.MarkFlagRequired("equipment-id")
	_ = c.MarkFlagRequired("sub-equipment-id")
	_ = c.MarkFlagRequired("date-ranges")
}

func (f *searchFlags) input() (reservation.ComposeAvailabilityInput, error) {
	var ranges []reservation.SearchDateRange
	for _, raw := range f.dateRanges {
		start, end, ok := strings.Cut(raw, "_")
		if !ok {
			return reservation.ComposeAvailabilityInput{}, fmt.Errorf("invalid --date-ranges entry %q (want YYYY-MM-DD_YYYY-MM-DD)", raw)
		}
		for _, d := range []string{start, end} {
			if _, err := time.Parse("2006-01-02", d); err != nil {
				return reservation.ComposeAvailabilityInput{}, fmt.Errorf("invalid date %q in --date-ranges", d)
			}
		}
		ranges = append(ranges, reservation.SearchDateRange{StartDate: start, EndDate: end})
	}
	return reservation.ComposeAvailabilityInput{
		LocationIDs:    f.locationIDs,
		EquipmentID:    f.equipmentID,
		SubEquipmentID: f.subEquipmentID,
		DateRanges:     ranges,
		Nights:         f.nights,
		PreferWeekend:  f.preferWeekend,
	}, nil
}

func newAvailabilityCmd() *cobra.Command {
	var flags searchFlags

	c := &cobra.Command{
		Use:   "availability",
		Short: "Search availability and print every matching candidate slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			input, err := flags.input()
			if err != nil {
				return err
			}

			composer := &availability.Composer{API: apiClient(cfg)}
			seq := composer.Compose(input, nil)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LOCATION\tRESOURCE\tMAP\tSTART\tEND\tNIGHTS")
			var n int
			for {
				out, ok, err := seq.Next(cmd.Context())
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				n++
				fmt.Fprintf(w, "%s (%s)\t%d\t%s\t%s\t%s\t%s\n",
					out.ResourceLocationName, out.ResourceLocationID, out.ResourceID, out.MapID, out.Start, out.End, out.Nights)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if n == 0 {
				fmt.Println("no availability found")
			}
			return nil
		},
	}

	flags.register(c)
	return c
}
