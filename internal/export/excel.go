package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/prpulse/prpulse/internal/models"
)

var historyHeaders = []string{
	"Date",
	"Total Open",
	"Avg Age (days)",
	"Avg Age Excl. Oldest",
	"Avg Comments",
	"Avg Comments (commented)",
	"Approved",
	"Oldest Age (days)",
	"Oldest Title",
	"Zero Comments",
}

// WriteSnapshotHistory writes a repository's snapshot history to an xlsx
// file, one row per day in the order given
func WriteSnapshotHistory(path, repoName string, snapshots []*models.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "History"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	for col, header := range historyHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for i, snapshot := range snapshots {
		values := []interface{}{
			snapshot.DateString(),
			snapshot.TotalOpen,
			snapshot.AvgAgeDays,
			snapshot.AvgAgeDaysExcludingOldest,
			snapshot.AvgComments,
			snapshot.AvgCommentsWithComments,
			snapshot.ApprovedCount,
			snapshot.OldestAgeDays,
			snapshot.OldestTitle,
			snapshot.ZeroCommentCount,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
