package webui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"drilldeck/dblayer"
	"drilldeck/dbtypes"
	"drilldeck/forms"
	"drilldeck/webui/uitemplates"

	"github.com/golang/glog"
)

func (u *WebUI) adminPostsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/admin" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	user := u.requireAdmin(w, r)
	if user == nil {
		return
	}

	posts, err := u.feedPosts(r, "")
	if err != nil {
		glog.Errorf("Error while building post feed: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	render(w, uitemplates.AdminPostsTemplate, &uitemplates.AdminPostsParams{
		Username: user.Username,
		Posts:    posts,
	})
}

func (u *WebUI) createPostHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/admin/create-post" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	user := u.requireAdmin(w, r)
	if user == nil {
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			glog.Errorf("Error while parsing multipart form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		form := &forms.CreatePost{Description: r.PostForm.Get("description")}
		if errs := form.Validate(); !errs.Ok() {
			render(w, uitemplates.CreatePostTemplate, &uitemplates.CreatePostParams{FieldErrors: errs})
			return
		}

		var images []dblayer.ImageUpload
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				glog.Errorf("Error while opening uploaded image %q: %v", header.Filename, err)
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}
			defer file.Close()

			images = append(images, dblayer.ImageUpload{Name: header.Filename, Data: file})
		}

		author := dbtypes.PostAuthor{ID: user.UID, Username: user.Username}
		if _, err := u.db.CreatePost(ctx, author, form.Description, images); err != nil {
			glog.Errorf("Error while creating post: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		u.cache.Invalidate(PostsCacheKey)

		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}

	render(w, uitemplates.CreatePostTemplate, &uitemplates.CreatePostParams{})
}

func (u *WebUI) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/admin/delete-post" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	user := u.requireAdmin(w, r)
	if user == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	postID := r.PostForm.Get("post-id")
	err := u.db.DeletePost(r.Context(), postID)
	if errors.Is(err, dblayer.ErrPostNotFound) {
		// Already gone; treat the delete as done.
		err = nil
	}
	if err != nil {
		glog.Errorf("Error while deleting post %q: %v", postID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	u.cache.Invalidate(PostsCacheKey)

	http.Redirect(w, r, "/admin", http.StatusFound)
}

func (u *WebUI) adminTicketsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/admin/tickets" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	user := u.requireAdmin(w, r)
	if user == nil {
		return
	}

	messages, err := u.db.ListMessages(ctx)
	if err != nil {
		glog.Errorf("Error while listing tickets: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	feedbacks, err := u.db.ListFeedback(ctx)
	if err != nil {
		glog.Errorf("Error while listing ticket responses: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	byMessage := dblayer.FeedbackByMessage(feedbacks)

	params := &uitemplates.AdminTicketsParams{}
	for _, message := range messages {
		entry := uitemplates.AdminTicketEntry{
			MessageID:   message.ID,
			TicketID:    message.TicketID,
			Username:    message.Username,
			Description: message.Message,
			FiledOn:     message.Timestamp.Format(postedOnFormat),
		}
		for _, feedback := range byMessage[message.ID] {
			entry.Responses = append(entry.Responses, feedback.Feedback)
		}
		params.Tickets = append(params.Tickets, entry)
	}

	render(w, uitemplates.AdminTicketsTemplate, params)
}

func (u *WebUI) feedbackHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/admin/feedback" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	user := u.requireAdmin(w, r)
	if user == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	form := &forms.Feedback{
		MessageID: r.PostForm.Get("message-id"),
		Feedback:  r.PostForm.Get("feedback"),
	}
	if errs := form.Validate(); !errs.Ok() {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if _, err := u.db.CreateFeedback(r.Context(), form.MessageID, form.Feedback, user.Username); err != nil {
		glog.Errorf("Error while responding to ticket %q: %v", form.MessageID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/tickets", http.StatusFound)
}

func (u *WebUI) adminQuizHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/admin/quiz" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	user := u.requireAdmin(w, r)
	if user == nil {
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		form := &forms.CreateQuiz{Title: r.PostForm.Get("title")}
		for i := 0; r.PostForm.Has(fmt.Sprintf("question-%d", i)); i++ {
			question := forms.QuizQuestion{
				Question:      r.PostForm.Get(fmt.Sprintf("question-%d", i)),
				CorrectAnswer: -1,
			}
			for j := 0; j < 4; j++ {
				question.Options[j] = r.PostForm.Get(fmt.Sprintf("option-%d-%d", i, j))
			}
			if n, err := strconv.Atoi(r.PostForm.Get(fmt.Sprintf("correct-%d", i))); err == nil {
				question.CorrectAnswer = n
			}
			form.Questions = append(form.Questions, question)
		}

		if errs := form.Validate(); !errs.Ok() {
			params := u.adminQuizListParams(ctx, len(form.Questions))
			if params == nil {
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}
			params.FieldErrors = errs
			render(w, uitemplates.AdminQuizListTemplate, params)
			return
		}

		qc := &dbtypes.QuizCollection{Title: form.Title}
		for _, question := range form.Questions {
			qc.Quizzes = append(qc.Quizzes, dbtypes.Quiz{
				Question:      question.Question,
				Options:       question.Options[:],
				CorrectAnswer: question.CorrectAnswer,
			})
		}
		if _, err := u.db.CreateQuizCollection(ctx, qc); err != nil {
			glog.Errorf("Error while creating quiz: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/admin/quiz", http.StatusFound)
		return
	}

	questionCount := 3
	if n, err := strconv.Atoi(r.URL.Query().Get("questions")); err == nil {
		questionCount = n
	}
	if questionCount < 1 {
		questionCount = 1
	}
	if questionCount > 20 {
		questionCount = 20
	}

	params := u.adminQuizListParams(ctx, questionCount)
	if params == nil {
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	render(w, uitemplates.AdminQuizListTemplate, params)
}

// adminQuizListParams loads the quiz list with attempt counts.  It logs
// and returns nil on failure.
func (u *WebUI) adminQuizListParams(ctx context.Context, questionCount int) *uitemplates.AdminQuizListParams {
	collections, err := u.db.ListQuizCollections(ctx)
	if err != nil {
		glog.Errorf("Error while listing quizzes: %v", err)
		return nil
	}

	answers, err := u.db.ListQuizAnswers(ctx)
	if err != nil {
		glog.Errorf("Error while listing quiz submissions: %v", err)
		return nil
	}

	attemptsByTitle := map[string]int{}
	for _, answer := range answers {
		attemptsByTitle[answer.QuizTitle]++
	}

	params := &uitemplates.AdminQuizListParams{
		QuestionCount: questionCount,
		OptionIndexes: []int{0, 1, 2, 3},
	}
	for i := 0; i < questionCount; i++ {
		params.QuestionIndexes = append(params.QuestionIndexes, i)
	}
	for _, qc := range collections {
		params.Quizzes = append(params.Quizzes, uitemplates.AdminQuizEntry{
			Title:       qc.Title,
			Attempts:    attemptsByTitle[qc.Title],
			ResultsLink: "/admin/quiz/results?id=" + url.QueryEscape(qc.ID),
		})
	}
	return params
}

func (u *WebUI) quizResultsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/admin/quiz/results" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	user := u.requireAdmin(w, r)
	if user == nil {
		return
	}

	id := r.URL.Query().Get("id")
	qc, err := u.db.GetQuizCollection(ctx, id)
	if errors.Is(err, dblayer.ErrQuizNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		glog.Errorf("Error while loading quiz %q: %v", id, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	answers, err := u.db.ListQuizAnswers(ctx)
	if err != nil {
		glog.Errorf("Error while listing quiz submissions: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	var forQuiz []*dbtypes.QuizAnswer
	for _, answer := range answers {
		if answer.QuizTitle == qc.Title {
			forQuiz = append(forQuiz, answer)
		}
	}

	uniqueParticipants, _ := dblayer.AttemptStats(forQuiz)

	params := &uitemplates.QuizResultsParams{
		Title:              qc.Title,
		UniqueParticipants: uniqueParticipants,
	}
	for _, answer := range forQuiz {
		params.Attempts = append(params.Attempts, uitemplates.QuizAttemptRow{
			Username:    answer.EmployeeName,
			Email:       answer.EmployeeEmail,
			Score:       answer.Score,
			Total:       answer.TotalQuestions,
			SubmittedOn: answer.Timestamp.Format(postedOnFormat),
		})
	}

	render(w, uitemplates.QuizResultsTemplate, params)
}

func (u *WebUI) peopleHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/admin/people" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	user := u.requireAdmin(w, r)
	if user == nil {
		return
	}

	users, err := u.db.ListUsers(r.Context())
	if err != nil {
		glog.Errorf("Error while listing users: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.PeopleParams{}
	for _, person := range users {
		params.People = append(params.People, uitemplates.PersonRow{
			Username: person.Username,
			Email:    person.Email,
			Role:     person.Role,
		})
	}

	render(w, uitemplates.PeopleTemplate, params)
}
