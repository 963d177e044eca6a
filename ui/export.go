package ui

import (
	"time"

	"github.com/xuri/excelize/v2"

	"neeledger/domain/verdict"
)

var reviewExportHeaders = []string{
	"Review ID", "Run ID", "Report", "Claimed (t)", "Estimated (t)",
	"Confidence (%)", "Combined", "Recommendation", "Outcome",
	"Created", "Decided",
}

// buildReviewWorkbook renders the review ledger as a single-sheet workbook.
// The caller owns closing the returned file.
func buildReviewWorkbook(reviews []*verdict.Review) (*excelize.File, error) {
	f := excelize.NewFile()

	sheet := "Reviews"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for i, h := range reviewExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			f.Close()
			return nil, err
		}
	}

	for r, review := range reviews {
		decided := ""
		if review.DecidedAt != nil {
			decided = review.DecidedAt.Format(time.RFC3339)
		}
		values := []interface{}{
			review.ID.String(),
			review.RunID.String(),
			review.ReportName,
			review.Result.Claimed,
			review.Result.Predicted,
			review.Result.Confidence,
			review.Result.Provenance.Combined,
			string(review.Recommendation),
			string(review.Outcome),
			review.CreatedAt.Format(time.RFC3339),
			decided,
		}
		rowIdx := r + 2
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return f, nil
}
