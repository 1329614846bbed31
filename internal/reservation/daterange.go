package reservation

import (
	"math"
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// MergeDateRanges collapses the requested stay windows into the minimal
// set of query ranges: sorted by start date, past ranges dropped, and
// neighbours folded together while the span stays within 30 days. End
// dates are shifted one day forward first to compensate for the read
// API's exclusive end-date semantics.
//
// Merged ranges exist only to batch availability queries; the composer
// still filters results against the caller's exact requested windows.
func MergeDateRanges(now time.Time, ranges []SearchDateRange) []SearchDateRange {
	sorted := make([]SearchDateRange, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartDate < sorted[j].StartDate
	})

	var future []SearchDateRange
	for _, r := range sorted {
		start, err := time.Parse(dateLayout, r.StartDate)
		if err != nil {
			continue
		}
		end, err := time.Parse(dateLayout, r.EndDate)
		if err != nil {
			continue
		}
		if !start.After(now) {
			continue
		}
		future = append(future, SearchDateRange{
			StartDate: r.StartDate,
			EndDate:   end.AddDate(0, 0, 1).Format(dateLayout),
		})
	}
	if len(future) == 0 {
		return nil
	}

	var merged []SearchDateRange
	current := future[0]
	for _, next := range future[1:] {
		if daysBetween(current.StartDate, next.EndDate) <= 30 {
			current.EndDate = next.EndDate
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

func daysBetween(a, b string) int {
	ta, _ := time.Parse(dateLayout, a)
	tb, _ := time.Parse(dateLayout, b)
	return int(math.Round(math.Abs(tb.Sub(ta).Hours() / 24)))
}
