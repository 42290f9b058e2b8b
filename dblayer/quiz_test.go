package dblayer

import (
	"context"
	"errors"
	"testing"
	"time"

	"drilldeck/dbtypes"

	"github.com/google/go-cmp/cmp"
)

func phishingQuiz() *dbtypes.QuizCollection {
	return &dbtypes.QuizCollection{
		Title: "Phishing Basics",
		Quizzes: []dbtypes.Quiz{
			{
				Question:      "A vendor emails asking you to re-enter your password. What do you do?",
				Options:       []string{"Reply with it", "Report it", "Forward to a colleague", "Ignore it"},
				CorrectAnswer: 1,
			},
			{
				Question:      "Which link is safe to click?",
				Options:       []string{"None without checking the domain", "Any HTTPS link", "Links from known senders", "Shortened links"},
				CorrectAnswer: 0,
			},
		},
	}
}

func TestScore(t *testing.T) {
	qc := phishingQuiz()

	cases := []struct {
		name     string
		selected []int
		want     int
	}{
		{name: "all-correct", selected: []int{1, 0}, want: 2},
		{name: "one-correct", selected: []int{1, 2}, want: 1},
		{name: "none-correct", selected: []int{0, 3}, want: 0},
	}

	for _, tc := range cases {
		if got := Score(qc.Quizzes, tc.selected); got != tc.want {
			t.Errorf("%s: Score = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestSubmitQuizAnswers(t *testing.T) {
	ctx := context.Background()
	db, _, _ := newTestDB(Policy{})

	qc, err := db.CreateQuizCollection(ctx, phishingQuiz())
	if err != nil {
		t.Fatalf("CreateQuizCollection: %v", err)
	}

	submission, err := db.SubmitQuizAnswers(ctx, qc, "Dwight", "dwight@example.com", []int{1, 2})
	if err != nil {
		t.Fatalf("SubmitQuizAnswers: %v", err)
	}

	if submission.Score != 1 || submission.TotalQuestions != 2 {
		t.Errorf("Submission scored %d/%d, want 1/2", submission.Score, submission.TotalQuestions)
	}

	wantAnswers := []dbtypes.AnswerRecord{
		{Question: qc.Quizzes[0].Question, SelectedAnswer: 1, CorrectAnswer: 1, IsCorrect: true},
		{Question: qc.Quizzes[1].Question, SelectedAnswer: 2, CorrectAnswer: 0, IsCorrect: false},
	}
	if diff := cmp.Diff(wantAnswers, submission.Answers); diff != "" {
		t.Errorf("Answer records differ (-want +got):\n%s", diff)
	}

	stored, err := db.ListQuizAnswers(ctx)
	if err != nil {
		t.Fatalf("ListQuizAnswers: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != submission.ID {
		t.Errorf("ListQuizAnswers = %+v, want the stored submission", stored)
	}
}

func TestSubmitQuizAnswersRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	db, _, _ := newTestDB(Policy{})

	qc, err := db.CreateQuizCollection(ctx, phishingQuiz())
	if err != nil {
		t.Fatalf("CreateQuizCollection: %v", err)
	}

	if _, err := db.SubmitQuizAnswers(ctx, qc, "Jim", "jim@example.com", []int{1}); !errors.Is(err, ErrAnswerCountMismatch) {
		t.Errorf("Short submission = %v, want ErrAnswerCountMismatch", err)
	}

	if _, err := db.SubmitQuizAnswers(ctx, qc, "Jim", "jim@example.com", []int{1, -1}); !errors.Is(err, ErrUnansweredQuestions) {
		t.Errorf("Unanswered submission = %v, want ErrUnansweredQuestions", err)
	}

	// Neither rejection may store anything.
	stored, err := db.ListQuizAnswers(ctx)
	if err != nil {
		t.Fatalf("ListQuizAnswers: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("Rejected submissions were stored: %+v", stored)
	}
}

func TestQuizRetakes(t *testing.T) {
	ctx := context.Background()

	// Permissive policy: a retake creates a second document.
	db, _, _ := newTestDB(Policy{})
	qc, err := db.CreateQuizCollection(ctx, phishingQuiz())
	if err != nil {
		t.Fatalf("CreateQuizCollection: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := db.SubmitQuizAnswers(ctx, qc, "Angela", "angela@example.com", []int{1, 0}); err != nil {
			t.Fatalf("SubmitQuizAnswers #%d: %v", i+1, err)
		}
	}
	stored, err := db.ListQuizAnswers(ctx)
	if err != nil {
		t.Fatalf("ListQuizAnswers: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("ListQuizAnswers = %d submissions, want 2", len(stored))
	}

	// Rejecting policy: the second submission fails.
	db, _, _ = newTestDB(Policy{RejectQuizRetakes: true})
	qc, err = db.CreateQuizCollection(ctx, phishingQuiz())
	if err != nil {
		t.Fatalf("CreateQuizCollection: %v", err)
	}

	if _, err := db.SubmitQuizAnswers(ctx, qc, "Angela", "angela@example.com", []int{1, 0}); err != nil {
		t.Fatalf("SubmitQuizAnswers: %v", err)
	}
	if _, err := db.SubmitQuizAnswers(ctx, qc, "Angela", "angela@example.com", []int{0, 0}); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("Retake = %v, want ErrAlreadySubmitted", err)
	}
}

func TestGetQuizCollectionMissing(t *testing.T) {
	ctx := context.Background()
	db, _, _ := newTestDB(Policy{})

	if _, err := db.GetQuizCollection(ctx, "no-such-quiz"); !errors.Is(err, ErrQuizNotFound) {
		t.Errorf("GetQuizCollection = %v, want ErrQuizNotFound", err)
	}
}

func TestAttemptStats(t *testing.T) {
	now := time.Now()
	submissions := []*dbtypes.QuizAnswer{
		{EmployeeName: "Dwight", EmployeeEmail: "dwight@example.com", Timestamp: now},
		{EmployeeName: "Angela", EmployeeEmail: "angela@example.com", Timestamp: now},
		{EmployeeName: "Dwight", EmployeeEmail: "dwight@example.com", Timestamp: now},
		{EmployeeName: "", EmployeeEmail: "", Timestamp: now},
	}

	uniqueParticipants, byEmployee := AttemptStats(submissions)

	if uniqueParticipants != 2 {
		t.Errorf("AttemptStats unique participants = %d, want 2", uniqueParticipants)
	}

	want := []EmployeeAttempts{
		{Name: "Angela", Email: "angela@example.com", Attempts: 1},
		{Name: "Dwight", Email: "dwight@example.com", Attempts: 2},
	}
	if diff := cmp.Diff(want, byEmployee); diff != "" {
		t.Errorf("AttemptStats grouping differs (-want +got):\n%s", diff)
	}
}
