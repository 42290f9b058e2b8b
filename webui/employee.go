package webui

import (
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

const postedOnFormat = "Jan 2, 2006"

// feedPosts decorates the cached post list with like data for the given
// viewer.  Pass an empty viewer ID to skip the LikedByMe computation.
func (u *WebUI) feedPosts(r *http.Request, viewerID string) ([]uitemplates.FeedPost, error) {
	ctx := r.Context()

	posts, err := u.posts(ctx)
	if err != nil {
		return nil, fmt.Errorf("while listing posts: %w", err)
	}

	out := make([]uitemplates.FeedPost, 0, len(posts))
	for _, post := range posts {
		likes, err := u.db.LikesForPost(ctx, post.ID)
		if err != nil {
			return nil, fmt.Errorf("while listing likes for post %q: %w", post.ID, err)
		}

		entry := uitemplates.FeedPost{
			ID:          post.ID,
			Description: post.Description,
			ImageURLs:   post.ImageURLs,
			Author:      post.Author.Username,
			PostedOn:    post.Timestamp.Format(postedOnFormat),
			LikeCount:   len(likes),
		}
		for _, like := range likes {
			if viewerID != "" && like.UserID == viewerID {
				entry.LikedByMe = true
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func (u *WebUI) employeePostsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/employee" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	user := u.requireEmployee(w, r)
	if user == nil {
		return
	}

	posts, err := u.feedPosts(r, user.UID)
	if err != nil {
		glog.Errorf("Error while building post feed: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	render(w, uitemplates.EmployeePostsTemplate, &uitemplates.EmployeePostsParams{
		Username: user.Username,
		Posts:    posts,
	})
}

func (u *WebUI) likeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/employee/like" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	user := u.requireEmployee(w, r)
	if user == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		glog.Errorf("Error while parsing form: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	postID := r.PostForm.Get("post-id")

	var err error
	switch r.PostForm.Get("action") {
	case "unlike":
		err = u.db.UnlikePost(r.Context(), postID, user.UID)
	default:
		err = u.db.LikePost(r.Context(), postID, user.UID)
	}
	if errors.Is(err, dblayer.ErrAlreadyLiked) {
		// Stale form submit; the post is already in the desired state.
		err = nil
	}
	if err != nil {
		glog.Errorf("Error while updating like on post %q: %v", postID, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/employee", http.StatusFound)
}

func (u *WebUI) employeeQuizListHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/employee/quiz" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	user := u.requireEmployee(w, r)
	if user == nil {
		return
	}

	collections, err := u.db.ListQuizCollections(r.Context())
	if err != nil {
		glog.Errorf("Error while listing quizzes: %v", err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	params := &uitemplates.EmployeeQuizListParams{}
	for _, qc := range collections {
		params.Quizzes = append(params.Quizzes, uitemplates.QuizListEntry{
			Title:    qc.Title,
			TakeLink: "/employee/quiz/take?id=" + url.QueryEscape(qc.ID),
		})
	}

	render(w, uitemplates.EmployeeQuizListTemplate, params)
}

func takeQuizParams(qc *dbtypes.QuizCollection, userError string) *uitemplates.TakeQuizParams {
	params := &uitemplates.TakeQuizParams{
		UserError: userError,
		ID:        qc.ID,
		Title:     qc.Title,
	}
	for i, quiz := range qc.Quizzes {
		params.Questions = append(params.Questions, uitemplates.TakeQuizQuestion{
			Index:    i,
			Question: quiz.Question,
			Options:  quiz.Options,
		})
	}
	return params
}

func (u *WebUI) takeQuizHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/employee/quiz/take" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	user := u.requireEmployee(w, r)
	if user == nil {
		return
	}

	id := r.URL.Query().Get("id")
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
		id = r.PostForm.Get("id")
	}

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

	if r.Method != http.MethodPost {
		render(w, uitemplates.TakeQuizTemplate, takeQuizParams(qc, ""))
		return
	}

	// An unanswered question posts no radio value; it scores as -1 and is
	// rejected below.
	selected := make([]int, len(qc.Quizzes))
	for i := range qc.Quizzes {
		v := r.PostForm.Get(fmt.Sprintf("answer-%d", i))
		selected[i] = -1
		if v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				selected[i] = n
			}
		}
	}

	answer, err := u.db.SubmitQuizAnswers(ctx, qc, user.Username, user.Email, selected)
	if errors.Is(err, dblayer.ErrUnansweredQuestions) {
		render(w, uitemplates.TakeQuizTemplate, takeQuizParams(qc, "Please answer every question."))
		return
	}
	if errors.Is(err, dblayer.ErrAlreadySubmitted) {
		render(w, uitemplates.TakeQuizTemplate, takeQuizParams(qc, "You have already taken this quiz."))
		return
	}
	if err != nil {
		glog.Errorf("Error while submitting quiz %q: %v", id, err)
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	result := &uitemplates.QuizResultParams{
		Title:          qc.Title,
		Score:          answer.Score,
		TotalQuestions: answer.TotalQuestions,
	}
	for i, record := range answer.Answers {
		options := qc.Quizzes[i].Options
		entry := uitemplates.QuizResultAnswer{
			Question:   record.Question,
			WasCorrect: record.IsCorrect,
		}
		if record.SelectedAnswer >= 0 && record.SelectedAnswer < len(options) {
			entry.Selected = options[record.SelectedAnswer]
		}
		if record.CorrectAnswer >= 0 && record.CorrectAnswer < len(options) {
			entry.Correct = options[record.CorrectAnswer]
		}
		result.Answers = append(result.Answers, entry)
	}

	render(w, uitemplates.QuizResultTemplate, result)
}

func (u *WebUI) ticketHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/employee/ticket" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ctx := r.Context()

	user := u.requireEmployee(w, r)
	if user == nil {
		return
	}

	params := &uitemplates.TicketParams{}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			glog.Errorf("Error while parsing form: %v", err)
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}

		form := &forms.Ticket{Message: r.PostForm.Get("message")}
		if errs := form.Validate(); !errs.Ok() {
			params.FieldErrors = errs
		} else {
			if _, err := u.db.CreateMessage(ctx, user, form.Message); err != nil {
				glog.Errorf("Error while filing ticket: %v", err)
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}

			// Redirect so a reload doesn't file the ticket twice.
			http.Redirect(w, r, "/employee/ticket", http.StatusFound)
			return
		}
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

	for _, message := range messages {
		if message.UserID != user.UID {
			continue
		}

		entry := uitemplates.TicketEntry{
			TicketID:    message.TicketID,
			Description: message.Message,
			FiledOn:     message.Timestamp.Format(postedOnFormat),
		}
		for _, feedback := range byMessage[message.ID] {
			entry.Responses = append(entry.Responses, feedback.Feedback)
		}
		params.Tickets = append(params.Tickets, entry)
	}

	render(w, uitemplates.TicketTemplate, params)
}
