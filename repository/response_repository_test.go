package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/vnkhanh/surveyhub/models"
	"github.com/vnkhanh/surveyhub/services"
)

func startResponse(t *testing.T, repo *ResponseRepository, surveyID uuid.UUID) *models.Response {
	t.Helper()
	resp := &models.Response{ID: uuid.New(), SurveyID: surveyID, StartedAt: *at(0)}
	if err := repo.CreateResponse(context.Background(), resp); err != nil {
		t.Fatalf("create response: %v", err)
	}
	return resp
}

func TestReplaceItemsAndFinalize(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	surveys := NewSurveyRepository(db)
	repo := NewResponseRepository(db)
	seeded := seedSurvey(t, surveys)
	name := seeded.Sections[1].Questions[1]
	color := seeded.Sections[1].Questions[0]

	resp := startResponse(t, repo, seeded.ID)
	if err := repo.ReplaceItems(ctx, resp.ID, []models.ResponseItem{{QuestionID: name.ID, AnswerText: ptr("draft")}}); err != nil {
		t.Fatal(err)
	}

	resp.SubmittedAt = at(5)
	resp.IsComplete = true
	items := []models.ResponseItem{
		{QuestionID: name.ID, AnswerText: ptr("Ana")},
		{QuestionID: color.ID, AnswerValue: models.ListAnswer(models.StringScalar("red"), models.StringScalar("blue"))},
	}
	if err := repo.FinalizeResponse(ctx, resp, items, false); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	got, err := repo.GetResponse(ctx, resp.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsComplete || got.SubmittedAt == nil || len(got.Items) != 2 {
		t.Fatalf("unexpected stored response %+v", got)
	}
	byQ := got.ItemsByQuestion()
	if byQ[name.ID].Text() != "Ana" {
		t.Fatalf("draft item was not replaced")
	}
	if v := byQ[color.ID].AnswerValue; v.CompactJSON() != `["red","blue"]` {
		t.Fatalf("answer value lost in storage: %s", v.CompactJSON())
	}
	if !byQ[name.ID].AnswerValue.IsEmpty() {
		t.Fatalf("text-only item should load with an empty value")
	}

	if err := repo.ReplaceItems(ctx, resp.ID, nil); !errors.Is(err, services.ErrResponseAlreadySubmitted) {
		t.Fatalf("expected ErrResponseAlreadySubmitted, got %v", err)
	}
	if err := repo.FinalizeResponse(ctx, resp, items, false); !errors.Is(err, services.ErrResponseAlreadySubmitted) {
		t.Fatalf("second finalize: expected ErrResponseAlreadySubmitted, got %v", err)
	}
	if _, err := repo.GetResponse(ctx, uuid.New(), false); !errors.Is(err, services.ErrResponseNotFound) {
		t.Fatalf("expected ErrResponseNotFound, got %v", err)
	}
}

func TestFinalizeRejectsDuplicateIdentity(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewResponseRepository(db)
	seeded := seedSurvey(t, NewSurveyRepository(db))
	hash := services.HashIdentity("ana@example.com")

	first := startResponse(t, repo, seeded.ID)
	first.SubmittedAt, first.IsComplete, first.UserInfoHash = at(1), true, &hash
	if err := repo.FinalizeResponse(ctx, first, nil, true); err != nil {
		t.Fatal(err)
	}
	dup, err := repo.HasCompleteResponseWithHash(ctx, seeded.ID, hash)
	if err != nil || !dup {
		t.Fatalf("hash lookup = %v, %v", dup, err)
	}

	second := startResponse(t, repo, seeded.ID)
	second.SubmittedAt, second.IsComplete, second.UserInfoHash = at(2), true, &hash
	if err := repo.FinalizeResponse(ctx, second, nil, true); !errors.Is(err, services.ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}
	stored, _ := repo.GetResponse(ctx, second.ID, false)
	if stored.IsComplete {
		t.Fatalf("rejected duplicate must stay incomplete")
	}

	// without dedupe the same hash is accepted
	if err := repo.FinalizeResponse(ctx, second, nil, false); err != nil {
		t.Fatalf("finalize without dedupe: %v", err)
	}
}

func TestListCompleteResponses(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewResponseRepository(db)
	seeded := seedSurvey(t, NewSurveyRepository(db))

	var ids []uuid.UUID
	for i := 1; i <= 3; i++ {
		r := startResponse(t, repo, seeded.ID)
		r.SubmittedAt, r.IsComplete = at(i), true
		if err := repo.FinalizeResponse(ctx, r, nil, false); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, r.ID)
	}
	startResponse(t, repo, seeded.ID) // still open

	list, err := repo.ListCompleteResponses(ctx, seeded.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 completed responses, got %d", len(list))
	}
	if list[0].ID != ids[2] || list[2].ID != ids[0] {
		t.Fatalf("expected newest submission first")
	}

	n, err := NewSurveyRepository(db).CountCompleteResponses(ctx, seeded.ID)
	if err != nil || n != 3 {
		t.Fatalf("count = %d, %v", n, err)
	}
	if n, err := repo.CountCompleteResponses(ctx, seeded.ID); err != nil || n != 3 {
		t.Fatalf("response count = %d, %v", n, err)
	}
	other, _ := repo.ListCompleteResponses(ctx, uuid.New(), false)
	if other == nil || len(other) != 0 {
		t.Fatalf("unknown survey should list empty, got %v", other)
	}
}

func TestResponseServiceOnRepositories(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	surveys := NewSurveyRepository(db)
	seeded := seedSurvey(t, surveys)
	svc := services.NewResponseService(surveys, NewResponseRepository(db), nil, nil)
	name := seeded.Sections[1].Questions[1]
	age := seeded.Sections[0].Questions[0]

	resp, err := svc.StartResponse(ctx, seeded.ID, "127.0.0.1", "go-test")
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.ValidateAndFinalize(ctx, resp.ID, []services.ItemInput{
		{QuestionID: age.ID, AnswerValue: models.ScalarAnswer(models.NumberScalar(30))},
	}, "")
	if !errors.Is(err, services.ErrRequiredFieldMissing) {
		t.Fatalf("expected ErrRequiredFieldMissing, got %v", err)
	}

	done, err := svc.ValidateAndFinalize(ctx, resp.ID, []services.ItemInput{
		{QuestionID: name.ID, AnswerText: ptr("Ana")},
		{QuestionID: age.ID, AnswerValue: models.ScalarAnswer(models.NumberScalar(30))},
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	if !done.IsComplete {
		t.Fatalf("response not completed")
	}

	report, err := svc.Statistics(ctx, seeded.ID)
	if err != nil {
		t.Fatal(err)
	}
	if report.TotalResponses != 1 || *report.For(age.ID).Average != 30 {
		t.Fatalf("unexpected report %+v", report)
	}

	out, err := svc.Export(ctx, seeded.ID, services.ExportCSV)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Data) == 0 {
		t.Fatalf("empty export")
	}
}
