package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/muurk/opensprinkler/internal/sprinkler"
)

func flow(v float64) *float64 { return &v }

func sampleLog() sprinkler.LogData {
	return sprinkler.LogData{
		{ProgramID: 1, StationID: 0, Duration: 600, End: 1700000600},
		{ProgramID: 99, StationID: 2, Duration: 120, End: 1700001000, Flow: flow(3.5)},
		{ProgramID: 0, StationID: -1, EventType: sprinkler.LogTypeRainDelay, Duration: 3600, End: 1700004000},
		{ProgramID: 254, StationID: 0, Duration: 300, End: 1700005000},
	}
}

func TestSummarize(t *testing.T) {
	totals := Summarize(sampleLog(), []string{"Front Lawn", "Roses"})

	require.Len(t, totals, 2)
	assert.Equal(t, StationTotal{StationID: 0, Name: "Front Lawn", Runs: 2, Seconds: 900}, totals[0])
	assert.Equal(t, StationTotal{StationID: 2, Name: "S03", Runs: 1, Seconds: 120}, totals[1])
}

func TestWriteLogWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLogWorkbook(&buf, sampleLog(), []string{"Front Lawn", "Roses"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"log", "summary"}, f.GetSheetList())

	rows, err := f.GetRows("log")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Start", "End", "Duration (s)", "Program", "Station", "Event", "Flow"}, rows[0])
	require.GreaterOrEqual(t, len(rows[1]), 5)
	assert.Equal(t, []string{"2023-11-14 22:13:20", "2023-11-14 22:23:20", "600", "P1", "Front Lawn"}, rows[1][:5])
	assert.Equal(t, "manual", rows[2][3])
	assert.Equal(t, "S03", rows[2][4])
	assert.Equal(t, "3.5", rows[2][6])
	assert.Equal(t, "rain delay", rows[3][5])
	assert.Equal(t, "run-once", rows[4][3])

	summary, err := f.GetRows("summary")
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"1", "Front Lawn", "2", "900", "15m0s"}, summary[1])
	assert.Equal(t, []string{"3", "S03", "1", "120", "2m0s"}, summary[2])
}

func TestWriteLogWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLogWorkbook(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("log")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
