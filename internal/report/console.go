// Package report renders aggregation results as plain text. It consumes the
// engine's output and adds no logic of its own.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prpulse/prpulse/internal/models"
)

const separator = "=================================================="

// PrintHeader writes the report banner
func PrintHeader(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, separator)
}

// PrintOpenSnapshot writes one repository's open-request statistics
func PrintOpenSnapshot(w io.Writer, snapshot *models.Snapshot, stale *models.StaleReport) {
	fmt.Fprintf(w, "\nRepository: %s\n", snapshot.RepoName)
	fmt.Fprintf(w, "Total Open PRs: %d\n", snapshot.TotalOpen)
	fmt.Fprintf(w, "Average PR Age: %.1f days\n", snapshot.AvgAgeDays)
	fmt.Fprintf(w, "Average PR Age (excluding oldest): %.1f days\n", snapshot.AvgAgeDaysExcludingOldest)
	fmt.Fprintf(w, "Average Comments per PR: %.1f\n", snapshot.AvgComments)
	fmt.Fprintf(w, "Average Comments (PRs with comments): %.1f\n", snapshot.AvgCommentsWithComments)
	fmt.Fprintf(w, "Approved PRs: %d\n", snapshot.ApprovedCount)
	fmt.Fprintf(w, "PRs with Zero Comments: %d\n", snapshot.ZeroCommentCount)
	if snapshot.OldestTitle != "" {
		fmt.Fprintf(w, "Oldest PR: %s (%d days)\n", snapshot.OldestTitle, snapshot.OldestAgeDays)
	}

	if stale == nil {
		return
	}

	if len(stale.ZeroComment) > 0 {
		fmt.Fprintf(w, "\nPRs awaiting a first comment:\n")
		for _, req := range stale.ZeroComment {
			fmt.Fprintf(w, "  %s %s (%d days)\n    %s\n", flags(req.IsApproved, req.IsDraft), req.Title, req.AgeDays, req.URL)
		}
	}

	if len(stale.NoRecentActivity) > 0 {
		fmt.Fprintf(w, "\nStale PRs:\n")
		for _, req := range stale.NoRecentActivity {
			fmt.Fprintf(w, "  %s %s (no activity for %d days)\n    %s\n", flags(req.IsApproved, req.IsDraft), req.Title, req.LastActivityDays, req.URL)
		}
	}
}

// PrintCycleTimeReport writes one repository's closed-request statistics
func PrintCycleTimeReport(w io.Writer, r *models.CycleTimeReport) {
	fmt.Fprintf(w, "\nRepository: %s\n", r.RepoName)
	fmt.Fprintf(w, "Period: Last %d days\n", r.WindowDays)
	fmt.Fprintf(w, "Total Closed PRs: %d\n", r.TotalClosed)
	if r.TotalClosed > 0 {
		fmt.Fprintf(w, "Average Days Open: %.1f\n", r.AvgDaysOpen)
		fmt.Fprintf(w, "Standard Deviation: %.1f\n", r.StdDevDaysOpen)
	}
	if r.ReopenedCount > 0 {
		fmt.Fprintf(w, "Reopened PRs: %d\n", r.ReopenedCount)
	}

	if len(r.PerAuthor) > 0 {
		authors := make([]string, 0, len(r.PerAuthor))
		for author := range r.PerAuthor {
			authors = append(authors, author)
		}
		sort.Strings(authors)

		for _, author := range authors {
			stats := r.PerAuthor[author]
			fmt.Fprintf(w, "\nStatistics for %s:\n", author)
			fmt.Fprintf(w, "Closed PRs: %d\n", stats.Count)
			if stats.Count > 0 {
				fmt.Fprintf(w, "Average Days Open: %.1f\n", stats.AvgDaysOpen)
				fmt.Fprintf(w, "Standard Deviation: %.1f\n", stats.StdDevDaysOpen)
			}
		}
	}
}

// PrintComparison writes per-metric movements against a historical baseline
func PrintComparison(w io.Writer, c *models.SnapshotComparison) {
	fmt.Fprintf(w, "\nRepository: %s\n", c.RepoName)
	fmt.Fprintf(w, "Comparing %s against %s\n", c.CurrentDate, c.PreviousDate)

	for _, name := range models.ComparisonMetrics {
		d, ok := c.Metrics[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-30s %8.1f -> %-8.1f %s\n", label(name)+":", d.Previous, d.Current, arrow(d.Direction))
	}
}

func flags(approved, draft bool) string {
	switch {
	case approved && draft:
		return "[approved,draft]"
	case approved:
		return "[approved]"
	case draft:
		return "[draft]"
	default:
		return "[-]"
	}
}

func label(metric string) string {
	return strings.ReplaceAll(metric, "_", " ")
}

func arrow(d models.Direction) string {
	switch d {
	case models.DirectionIncreased:
		return "(up)"
	case models.DirectionDecreased:
		return "(down)"
	default:
		return "(no change)"
	}
}
