package dblayer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"drilldeck/backend"
	"drilldeck/dbtypes"
)

// CreateQuizCollection stores an authored quiz.
func (db *DB) CreateQuizCollection(ctx context.Context, qc *dbtypes.QuizCollection) (*dbtypes.QuizCollection, error) {
	id, err := db.docs.Add(ctx, QuizCollectionsCollection, qc)
	if err != nil {
		return nil, fmt.Errorf("while adding quiz collection: %w", err)
	}
	qc.ID = id
	return qc, nil
}

func (db *DB) ListQuizCollections(ctx context.Context) ([]*dbtypes.QuizCollection, error) {
	docs, err := db.docs.Query(ctx, backend.Query{Collection: QuizCollectionsCollection})
	if err != nil {
		return nil, fmt.Errorf("while querying quiz collections: %w", err)
	}

	var collections []*dbtypes.QuizCollection
	for _, doc := range docs {
		qc := &dbtypes.QuizCollection{}
		if err := doc.DataTo(qc); err != nil {
			return nil, fmt.Errorf("while unmarshaling quiz collection %s: %w", doc.ID(), err)
		}
		qc.ID = doc.ID()
		collections = append(collections, qc)
	}
	return collections, nil
}

func (db *DB) GetQuizCollection(ctx context.Context, id string) (*dbtypes.QuizCollection, error) {
	doc, err := db.docs.Get(ctx, QuizCollectionsCollection, id)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("while reading quiz collection %s: %w", id, err)
	}

	qc := &dbtypes.QuizCollection{}
	if err := doc.DataTo(qc); err != nil {
		return nil, fmt.Errorf("while unmarshaling quiz collection %s: %w", id, err)
	}
	qc.ID = doc.ID()
	return qc, nil
}

// Score counts how many selected answers match the correct ones.  The
// slices must be the same length.
func Score(quizzes []dbtypes.Quiz, selected []int) int {
	score := 0
	for i, quiz := range quizzes {
		if selected[i] == quiz.CorrectAnswer {
			score++
		}
	}
	return score
}

// SubmitQuizAnswers grades a submission and stores it.  selected holds
// one option index per question; -1 marks an unanswered question, which
// rejects the submission before any remote write.  Retakes create fresh
// documents unless the retake policy rejects them.
func (db *DB) SubmitQuizAnswers(ctx context.Context, qc *dbtypes.QuizCollection, employeeName, employeeEmail string, selected []int) (*dbtypes.QuizAnswer, error) {
	if len(selected) != len(qc.Quizzes) {
		return nil, ErrAnswerCountMismatch
	}
	for _, answer := range selected {
		if answer < 0 {
			return nil, ErrUnansweredQuestions
		}
	}

	if db.policy.RejectQuizRetakes {
		existing, err := db.docs.Query(ctx, backend.Query{
			Collection: QuizAnswersCollection,
			Filters: []backend.Filter{
				{Path: "employeeEmail", Op: "==", Value: employeeEmail},
				{Path: "quizTitle", Op: "==", Value: qc.Title},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("while checking for earlier submission: %w", err)
		}
		if len(existing) > 0 {
			return nil, ErrAlreadySubmitted
		}
	}

	answers := make([]dbtypes.AnswerRecord, len(qc.Quizzes))
	for i, quiz := range qc.Quizzes {
		answers[i] = dbtypes.AnswerRecord{
			Question:       quiz.Question,
			SelectedAnswer: selected[i],
			CorrectAnswer:  quiz.CorrectAnswer,
			IsCorrect:      selected[i] == quiz.CorrectAnswer,
		}
	}

	submission := &dbtypes.QuizAnswer{
		QuizTitle:      qc.Title,
		EmployeeName:   employeeName,
		EmployeeEmail:  employeeEmail,
		Answers:        answers,
		Score:          Score(qc.Quizzes, selected),
		TotalQuestions: len(qc.Quizzes),
		Timestamp:      time.Now(),
	}

	id, err := db.docs.Add(ctx, QuizAnswersCollection, submission)
	if err != nil {
		return nil, fmt.Errorf("while adding quiz submission: %w", err)
	}
	submission.ID = id
	return submission, nil
}

// ListQuizAnswers lists submissions newest-first.
func (db *DB) ListQuizAnswers(ctx context.Context) ([]*dbtypes.QuizAnswer, error) {
	docs, err := db.docs.Query(ctx, backend.Query{
		Collection: QuizAnswersCollection,
		OrderBy:    "timestamp",
		Desc:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("while querying quiz submissions: %w", err)
	}

	var submissions []*dbtypes.QuizAnswer
	for _, doc := range docs {
		submission := &dbtypes.QuizAnswer{}
		if err := doc.DataTo(submission); err != nil {
			return nil, fmt.Errorf("while unmarshaling quiz submission %s: %w", doc.ID(), err)
		}
		submission.ID = doc.ID()
		submissions = append(submissions, submission)
	}
	return submissions, nil
}

// EmployeeAttempts is the per-employee attempt count for the admin stats
// page.
type EmployeeAttempts struct {
	Name     string
	Email    string
	Attempts int
}

// AttemptStats groups submissions on employee email.  Submissions with no
// email are ignored.
func AttemptStats(submissions []*dbtypes.QuizAnswer) (uniqueParticipants int, byEmployee []EmployeeAttempts) {
	attempts := map[string]*EmployeeAttempts{}
	for _, submission := range submissions {
		if submission.EmployeeEmail == "" {
			continue
		}
		entry, ok := attempts[submission.EmployeeEmail]
		if !ok {
			entry = &EmployeeAttempts{
				Name:  submission.EmployeeName,
				Email: submission.EmployeeEmail,
			}
			attempts[submission.EmployeeEmail] = entry
		}
		entry.Attempts++
	}

	for _, entry := range attempts {
		byEmployee = append(byEmployee, *entry)
	}
	sort.Slice(byEmployee, func(i, j int) bool {
		return byEmployee[i].Email < byEmployee[j].Email
	})

	return len(attempts), byEmployee
}
