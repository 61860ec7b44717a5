package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/surveyhub/models"
)

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

const (
	responsesSheet = "Responses"
	summarySheet   = "Summary"

	// excelize rejects longer cell values
	maxCellChars = excelize.TotalCellChars
)

// utf8BOM lets spreadsheet applications detect the encoding of the csv file.
const utf8BOM = "\ufeff"

// ParseExportFormat accepts the query value of the download endpoint. An
// empty value means a workbook.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx", "excel", "workbook":
		return ExportXLSX, nil
	case "csv", "delimited":
		return ExportCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

func (f ExportFormat) ContentType() string {
	if f == ExportCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (f ExportFormat) Extension() string {
	if f == ExportCSV {
		return "csv"
	}
	return "xlsx"
}

// RenderExport renders completed responses (items attached) of a survey whose
// sections and questions are already sorted.
func RenderExport(survey *models.Survey, responses []models.Response, format ExportFormat) ([]byte, error) {
	switch format {
	case ExportCSV:
		return RenderCSV(survey, responses)
	case ExportXLSX:
		return RenderWorkbook(survey, responses, Aggregate(responses))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
}

func RenderCSV(survey *models.Survey, responses []models.Response) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	for _, row := range exportRows(survey, responses) {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderWorkbook writes the raw rows on the first sheet and the per-question
// summary built from stats on the second.
func RenderWorkbook(survey *models.Survey, responses []models.Response, stats *StatisticsReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", responsesSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	rows := exportRows(survey, responses)
	for i, row := range rows {
		if err := writeRow(f, responsesSheet, i+1, stringCells(row)); err != nil {
			return nil, err
		}
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err := f.SetCellStyle(responsesSheet, "A1", last, bold); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	if err := writeSummary(f, survey, stats, bold); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	out, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeSummary(f *excelize.File, survey *models.Survey, stats *StatisticsReport, bold int) error {
	total := 0
	if stats != nil {
		total = stats.TotalResponses
	}

	row := 1
	put := func(cells ...interface{}) error {
		err := writeRow(f, summarySheet, row, cells)
		row++
		return err
	}

	if err := put("Total Responses", total); err != nil {
		return err
	}
	row++ // blank

	for _, q := range VisibleQuestions(survey) {
		st := stats.For(q.ID)
		if st == nil {
			st = &QuestionStatistics{}
		}

		title, _ := excelize.CoordinatesToCellName(1, row)
		if err := put(clip(QuestionHeading(survey, q))); err != nil {
			return err
		}
		if err := f.SetCellStyle(summarySheet, title, title, bold); err != nil {
			return err
		}
		if err := put("Responses", st.ResponseCount); err != nil {
			return err
		}
		if st.Average != nil {
			if err := put("Average", round2(*st.Average)); err != nil {
				return err
			}
		}
		if st.ValueCounts.Len() > 0 {
			if err := put("Value", "Frequency"); err != nil {
				return err
			}
			for _, k := range st.ValueCounts.Keys() {
				if err := put(clip(k), st.ValueCounts.Get(k)); err != nil {
					return err
				}
			}
		}
		row++ // blank between question blocks
	}
	return nil
}

// round2 rounds to two decimals. Values too large to carry a fraction are kept.
func round2(v float64) float64 {
	if math.Abs(v) >= 1<<52 {
		return v
	}
	return math.Round(v*100) / 100
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

func stringCells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = clip(v)
	}
	return out
}

func clip(s string) string {
	r := []rune(s)
	if len(r) <= maxCellChars {
		return s
	}
	return string(r[:maxCellChars])
}

// exportRows builds the header plus one row per response, shared by both
// renderers.
func exportRows(survey *models.Survey, responses []models.Response) [][]string {
	questions := VisibleQuestions(survey)

	header := make([]string, 0, len(questions)+2)
	header = append(header, "Response ID", "Submitted At")
	for _, q := range questions {
		header = append(header, QuestionHeading(survey, q))
	}

	rows := make([][]string, 0, len(responses)+1)
	rows = append(rows, header)
	for ri := range responses {
		r := &responses[ri]
		items := r.ItemsByQuestion()

		row := make([]string, 0, len(header))
		row = append(row, r.ID.String(), formatSubmitted(r.SubmittedAt))
		for _, q := range questions {
			row = append(row, AnswerCell(items[q.ID]))
		}
		rows = append(rows, row)
	}
	return rows
}

func formatSubmitted(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// AnswerCell is the text written for one answer: answer_text when present,
// otherwise the value (lists joined by ", ", likert maps as compact JSON).
func AnswerCell(item *models.ResponseItem) string {
	if item == nil {
		return ""
	}
	if text := item.Text(); text != "" {
		return text
	}

	v := item.AnswerValue
	switch v.Kind() {
	case models.AnswerList:
		parts := make([]string, 0, len(v.List()))
		for _, s := range v.List() {
			parts = append(parts, s.String())
		}
		return strings.Join(parts, ", ")
	case models.AnswerLikert:
		return v.CompactJSON()
	case models.AnswerScalar:
		s, _ := v.Scalar()
		return s.String()
	}
	return ""
}
