package formatter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/core/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleModel() *timeline.Model {
	activities := []model.Activity{
		{ID: "a1", CategoryID: "c1", CategoryName: "Study", Date: "2024-03-10", StartTime: "09:15", Duration: 90, Notes: "chapter 3"},
		{ID: "a2", CategoryID: "c2", CategoryName: "Exercise", Date: "2024-03-10", StartTime: "23:30", Duration: 60},
		{ID: "a3", CategoryID: "c1", CategoryName: "Study", Date: "2024-03-10", StartTime: "noon", Duration: 10},
	}
	categories := []model.Category{
		{ID: "c1", Name: "Study", Color: "#3b82f6"},
		{ID: "c2", Name: "Exercise", Color: "#10b981"},
	}
	return timeline.Compile(activities, categories, "2024-03-10")
}

func emptyModel() *timeline.Model {
	return timeline.Compile(nil, nil, "2024-03-10")
}

func TestNew(t *testing.T) {
	tests := []struct {
		output  string
		want    any
		wantErr bool
	}{
		{"", &TableFormatter{}, false},
		{model.OutputTable, &TableFormatter{}, false},
		{model.OutputJSON, &JSONFormatter{}, false},
		{model.OutputCSV, &CSVFormatter{}, false},
		{model.OutputSummary, &SummaryFormatter{}, false},
		{"yaml", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			f, err := New(tt.output, &bytes.Buffer{}, Options{})
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, f)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf, Options{}).Format(sampleModel()))
	out := buf.String()

	assert.Contains(t, out, "Timeline for 2024-03-10")
	assert.Contains(t, out, "09:15-10:00 Study")
	assert.Contains(t, out, "10:00-10:45 Study")
	assert.Contains(t, out, "23:30-24:00 Exercise")
	assert.Contains(t, out, "ran past midnight")
	assert.Contains(t, out, "no valid start time: a3")
	// Category totals include the rejected and truncated minutes.
	assert.Contains(t, out, "160")
	assert.NotContains(t, out, "12 AM")
}

func TestTableFormatterAllHours(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf, Options{AllHours: true}).Format(sampleModel()))
	assert.Contains(t, buf.String(), "12 AM")
	assert.Contains(t, buf.String(), "11 PM")
}

func TestTableFormatterEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf, Options{}).Format(emptyModel()))
	assert.Equal(t, "Timeline for 2024-03-10\nNo activities logged.\n", buf.String())
}

func TestTableFormatterColorAlignment(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf, Options{Color: true}).Format(sampleModel()))

	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "│") && strings.Contains(line, "Exercise") && strings.Contains(line, "\033[") {
			assert.True(t, strings.HasSuffix(line, "│"))
		}
	}
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter(&buf).Format(sampleModel()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)

	assert.Equal(t, "Kind", records[0][0])
	// 09:15+90 spans two hours, 23:30+60 is cut at midnight.
	segments, categories := 0, 0
	for _, r := range records[1:] {
		switch r[0] {
		case rowSegment:
			segments++
		case rowCategory:
			categories++
		}
	}
	assert.Equal(t, 3, segments)
	assert.Equal(t, 2, categories)

	assert.Equal(t, []string{rowSegment, "2024-03-10", "9", "a1", "Study", "15", "45", "#3b82f6", "chapter 3"}, records[1])
	last := records[len(records)-1]
	assert.Equal(t, []string{rowCategory, "2024-03-10", "", "", "Exercise", "", "60", "#10b981", ""}, last)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Format(sampleModel()))

	var decoded map[string]any
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "2024-03-10", decoded["date"])
	assert.EqualValues(t, 160, decoded["totalDuration"])
	assert.EqualValues(t, 120, decoded["placedMinutes"])
	assert.EqualValues(t, 30, decoded["truncatedMinutes"])
	assert.Len(t, decoded["hours"], 24)
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestSummaryFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSummaryFormatter(&buf, Options{}).Format(sampleModel()))
	out := buf.String()

	assert.Contains(t, out, "Daily Habit Summary")
	assert.Contains(t, out, "Date: 2024-03-10")
	assert.Contains(t, out, "Logged:        2h 40m")
	assert.Contains(t, out, "Past midnight: 30m")
	assert.Contains(t, out, "XP earned:     1,200")
	assert.Contains(t, out, "Skipped (invalid start time): a3")
	assert.Less(t, strings.Index(out, "Study"), strings.Index(out, "Exercise"))
}

func TestSummaryFormatterEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSummaryFormatter(&buf, Options{}).Format(emptyModel()))
	assert.Contains(t, buf.String(), "No activities logged.")
	assert.NotContains(t, buf.String(), "Categories:")
}
