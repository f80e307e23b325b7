package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
	"github.com/xuri/excelize/v2"
)

const (
	statsSheet   = "Stats"
	resultsSheet = "Results"
)

var (
	statsHeader   = []any{"Rank", "Player", "Average", "Games", "Fails"}
	resultsHeader = []any{"Message ID", "Posted At", "Winners"}
)

// writeWorkbook renders the ranked summary and the raw results as an XLSX file.
func writeWorkbook(w io.Writer, summary statsdomain.Summary, results []statsdomain.ResultRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1".
	if err := f.SetSheetName(f.GetSheetName(0), statsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(resultsSheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", resultsSheet, err)
	}

	if err := setRow(f, statsSheet, 1, statsHeader); err != nil {
		return err
	}
	for i, p := range summary.Players {
		row := []any{i + 1, p.Display(), roundAverage(p.Average()), p.Count, p.FailCount}
		if err := setRow(f, statsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := setRow(f, resultsSheet, 1, resultsHeader); err != nil {
		return err
	}
	for i, r := range results {
		row := []any{r.MessageID, r.Timestamp.UTC().Format(time.RFC3339), formatWinners(r.Winners)}
		if err := setRow(f, resultsSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func roundAverage(v float64) float64 {
	return float64(int(v*1000+0.5)) / 1000
}

// formatWinners renders entries like "<@1> 3, Ally X".
func formatWinners(entries []statsdomain.WinnerEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		switch w := e.(type) {
		case statsdomain.ResolvedWinner:
			parts = append(parts, "<@"+w.UserID+"> "+w.Score.String())
		case statsdomain.UnresolvedWinner:
			parts = append(parts, w.Nickname+" "+w.Score.String())
		}
	}
	return strings.Join(parts, ", ")
}
