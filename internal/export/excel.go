// Package export renders read-only spreadsheet snapshots of a board view.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"tablero/internal/models"
)

const sheetName = "Tasks"

var headers = []string{
	"Status",
	"Title",
	"Description",
	"Story Points",
	"Estimated Minutes",
	"Logged Minutes",
}

// Filename builds the download name for a task snapshot taken at ts.
func Filename(ts time.Time) string {
	return fmt.Sprintf("tasks-sprint-%s.xlsx", ts.Format("2006-01-02"))
}

// WriteTasks writes an xlsx workbook with one row per task to w. It only
// reads the task list and never touches board state.
func WriteTasks(w io.Writer, tasks []models.Task) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, task := range tasks {
		row := []any{
			task.Status.ColumnLabel(),
			task.Title,
			task.Description,
			task.StoryPoints,
			task.EstimatedMinutes,
			task.TotalLoggedMinutes(),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
