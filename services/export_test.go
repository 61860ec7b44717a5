package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/surveyhub/models"
)

func exportFixture() (*models.Survey, []models.Response) {
	survey := buildSurvey(models.SurveyStatusPublished,
		[]models.Question{
			question("Name", models.QuestionShortText),
			hidden(question("Internal", models.QuestionShortText)),
			question("Colors", models.QuestionMultipleChoice),
		},
		[]models.Question{
			question("Score", models.QuestionNumber),
			question("Service", models.QuestionLikert),
		},
	)
	a, b := survey.Sections[0].Questions, survey.Sections[1].Questions
	at := time.Date(2025, 5, 4, 10, 30, 0, 0, time.FixedZone("ICT", 7*3600))

	responses := []models.Response{
		completed(survey.ID, at,
			textItem(a[0], "Doe, Jane"),
			textItem(a[1], "never exported"),
			valueItem(a[2], list("red", "blue")),
			valueItem(b[0], num(4)),
			valueItem(b[1], models.LikertAnswers(models.LikertAnswer{Row: "speed", Value: models.NumberScalar(5)})),
		),
		completed(survey.ID, at.Add(time.Hour),
			textItem(a[0], `He said "hi"`),
			valueItem(b[0], num(2)),
		),
	}
	return survey, responses
}

func TestRenderCSV(t *testing.T) {
	survey, responses := exportFixture()

	data, err := RenderCSV(survey, responses)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte(utf8BOM)) {
		t.Fatalf("csv must start with a byte order mark")
	}

	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	wantHeader := []string{"Response ID", "Submitted At", "A1. Name", "A2. Colors", "B1. Score", "B2. Service"}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Fatalf("header = %q", rows[0])
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}

	first := rows[1]
	if first[0] != responses[0].ID.String() {
		t.Fatalf("unexpected response id %q", first[0])
	}
	if first[1] != "2025-05-04T03:30:00Z" {
		t.Fatalf("submitted time should be UTC RFC3339, got %q", first[1])
	}
	if first[2] != "Doe, Jane" || first[3] != "red, blue" || first[4] != "4" || first[5] != `{"speed":5}` {
		t.Fatalf("unexpected answers %q", first)
	}
	if second := rows[2]; second[2] != `He said "hi"` || second[3] != "" || second[5] != "" {
		t.Fatalf("unexpected second row %q", second)
	}
}

func TestRenderCSVIsDeterministic(t *testing.T) {
	survey, responses := exportFixture()
	a, err := RenderCSV(survey, responses)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RenderCSV(survey, responses)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("two renders of the same input differ")
	}
}

func TestRenderWorkbookIsDeterministic(t *testing.T) {
	survey, responses := exportFixture()
	a, err := RenderWorkbook(survey, responses, Aggregate(responses))
	if err != nil {
		t.Fatal(err)
	}
	b, err := RenderWorkbook(survey, responses, Aggregate(responses))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("two renders of the same input differ")
	}
}

func TestRound2(t *testing.T) {
	for in, want := range map[float64]float64{3.14159: 3.14, -2.5: -2.5, 1e308: 1e308} {
		if got := round2(in); got != want {
			t.Errorf("round2(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestRenderCSVWithoutResponses(t *testing.T) {
	survey, _ := exportFixture()
	data, err := RenderCSV(survey, nil)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the header, got %d lines", len(lines))
	}
}

func TestRenderWorkbook(t *testing.T) {
	survey, responses := exportFixture()

	data, err := RenderExport(survey, responses, ExportXLSX)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{"Responses", "Summary"}) {
		t.Fatalf("unexpected sheets %v", got)
	}

	rows, err := f.GetRows("Responses")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][2] != "A1. Name" || rows[1][2] != "Doe, Jane" {
		t.Fatalf("unexpected responses sheet %q", rows)
	}

	cell := func(axis string) string {
		v, err := f.GetCellValue("Summary", axis)
		if err != nil {
			t.Fatalf("read %s: %v", axis, err)
		}
		return v
	}
	if cell("A1") != "Total Responses" || cell("B1") != "2" {
		t.Fatalf("unexpected total row %q %q", cell("A1"), cell("B1"))
	}
	// first block: A1. Name has no numbers, only text answers
	if cell("A3") != "A1. Name" || cell("A4") != "Responses" || cell("B4") != "2" {
		t.Fatalf("unexpected first block %q %q %q", cell("A3"), cell("A4"), cell("B4"))
	}

	summary, err := f.GetRows("Summary")
	if err != nil {
		t.Fatal(err)
	}
	scoreAt := -1
	for i, r := range summary {
		if len(r) > 0 && r[0] == "B1. Score" {
			scoreAt = i
		}
	}
	if scoreAt < 0 {
		t.Fatalf("score block missing: %q", summary)
	}
	if avg := summary[scoreAt+2]; avg[0] != "Average" || avg[1] != "3" {
		t.Fatalf("unexpected average row %q", avg)
	}
	if hdr := summary[scoreAt+3]; hdr[0] != "Value" || hdr[1] != "Frequency" {
		t.Fatalf("unexpected frequency header %q", hdr)
	}
}

func TestParseExportFormat(t *testing.T) {
	cases := map[string]ExportFormat{
		"":          ExportXLSX,
		"xlsx":      ExportXLSX,
		" Excel ":   ExportXLSX,
		"workbook":  ExportXLSX,
		"CSV":       ExportCSV,
		"delimited": ExportCSV,
	}
	for in, want := range cases {
		got, err := ParseExportFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseExportFormat(%q) = %q, %v", in, got, err)
		}
	}

	if _, err := ParseExportFormat("pdf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := RenderExport(&models.Survey{}, nil, ExportFormat("pdf")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat from render, got %v", err)
	}
}

func TestAnswerCell(t *testing.T) {
	q := question("q", models.QuestionShortText)
	both := valueItem(q, str("value"))
	both.AnswerText = strPtr("typed")

	cases := []struct {
		name string
		item *models.ResponseItem
		want string
	}{
		{"absent", nil, ""},
		{"text wins", &both, "typed"},
		{"bool", ptrItem(valueItem(q, models.ScalarAnswer(models.BoolScalar(false)))), "false"},
		{"empty", ptrItem(valueItem(q, models.EmptyAnswer())), ""},
		{"list", ptrItem(valueItem(q, list("a", "b", "c"))), "a, b, c"},
	}
	for _, tc := range cases {
		if got := AnswerCell(tc.item); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}
