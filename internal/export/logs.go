package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/muurk/opensprinkler/internal/sprinkler"
)

const (
	logSheet     = "log"
	summarySheet = "summary"
	timeLayout   = "2006-01-02 15:04:05"
)

var logHeader = []any{"Start", "End", "Duration (s)", "Program", "Station", "Event", "Flow"}

// StationTotal is the accumulated run time of one station.
type StationTotal struct {
	StationID int
	Name      string
	Runs      int
	Seconds   int
}

// Summarize totals station runs by station. Special events are skipped.
// The result is sorted by station index.
func Summarize(records sprinkler.LogData, names []string) []StationTotal {
	byStation := make(map[int]*StationTotal)
	for _, rec := range records {
		if rec.IsSpecialEvent() {
			continue
		}
		total, ok := byStation[rec.StationID]
		if !ok {
			total = &StationTotal{StationID: rec.StationID, Name: stationName(names, rec.StationID)}
			byStation[rec.StationID] = total
		}
		total.Runs++
		total.Seconds += rec.Duration
	}

	out := make([]StationTotal, 0, len(byStation))
	for _, total := range byStation {
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StationID < out[j].StationID })
	return out
}

// WriteLogWorkbook writes records as an .xlsx workbook with a "log" sheet
// (one row per record) and a "summary" sheet (run time per station).
// names maps station indexes to names and may be nil.
func WriteLogWorkbook(w io.Writer, records sprinkler.LogData, names []string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", logSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := f.SetSheetRow(logSheet, "A1", &logHeader); err != nil {
		return fmt.Errorf("failed to write log header: %w", err)
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := logRow(rec, names)
		if err := f.SetSheetRow(logSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write log row %d: %w", i+2, err)
		}
	}

	summaryHeader := []any{"Station", "Name", "Runs", "Total (s)", "Total"}
	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	for i, total := range Summarize(records, names) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			total.StationID + 1,
			total.Name,
			total.Runs,
			total.Seconds,
			(time.Duration(total.Seconds) * time.Second).String(),
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(logSheet, "A", "B", 20)
	_ = f.SetColWidth(logSheet, "E", "E", 24)
	_ = f.SetColWidth(summarySheet, "B", "B", 24)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func logRow(rec sprinkler.LogRecord, names []string) []any {
	row := []any{
		rec.StartTime().Format(timeLayout),
		rec.EndTime().Format(timeLayout),
		rec.Duration,
	}
	if rec.IsSpecialEvent() {
		row = append(row, "", "", sprinkler.EventLabel(rec.EventType))
	} else {
		row = append(row, sprinkler.ProgramLabel(rec.ProgramID), stationName(names, rec.StationID), "")
	}
	if rec.Flow != nil {
		row = append(row, *rec.Flow)
	} else {
		row = append(row, nil)
	}
	return row
}

func stationName(names []string, sid int) string {
	if sid >= 0 && sid < len(names) && names[sid] != "" {
		return names[sid]
	}
	return fmt.Sprintf("S%02d", sid+1)
}
