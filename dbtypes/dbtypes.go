// Package dbtypes holds the document shapes shared by the backend and the UI.
package dbtypes

import "time"

// Roles stored in the per-user document.  Any other value (including the
// empty string) grants access to neither area.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Account is the raw identity-provider view of a signed-in user, before
// the per-user document has been merged in.
type Account struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	CreatedAt   time.Time
}

// CurrentUser is an Account enriched with the role and username from the
// users/{uid} document.  It is replaced, never mutated: logout writes nil,
// profile edits write a fresh merged copy.
type CurrentUser struct {
	Account

	// Role is empty until the users/{uid} document has been read, or
	// forever if that document does not exist.
	Role     string
	Username string
}

// User is the users/{uid} document.
type User struct {
	Role     string `firestore:"role"`
	Username string `firestore:"username"`
	Email    string `firestore:"email"`
}

// PostAuthor identifies the admin that wrote a post.
type PostAuthor struct {
	ID       string `firestore:"id"`
	Username string `firestore:"username"`
}

// Post is a security-policy post in the posts collection.
type Post struct {
	ID          string     `firestore:"id"`
	Description string     `firestore:"description"`
	ImageURLs   []string   `firestore:"imageUrls"`
	Author      PostAuthor `firestore:"author"`
	Timestamp   time.Time  `firestore:"timestamp"`
}

// Like joins a user to a post.  Uniqueness of (PostID, UserID) is not
// enforced server-side; duplicates can appear if the client races.
type Like struct {
	ID        string    `firestore:"id"`
	PostID    string    `firestore:"postId"`
	UserID    string    `firestore:"userId"`
	Timestamp time.Time `firestore:"timestamp"`
}

// Message is a support-ticket message in the messages collection.
type Message struct {
	ID        string    `firestore:"id"`
	TicketID  string    `firestore:"ticketId"`
	Message   string    `firestore:"message"`
	Username  string    `firestore:"username"`
	UserID    string    `firestore:"userId"`
	Timestamp time.Time `firestore:"timestamp"`
}

// Feedback is an admin-authored answer referencing a ticket message.
type Feedback struct {
	ID        string    `firestore:"id"`
	MessageID string    `firestore:"messageId"`
	Feedback  string    `firestore:"feedback"`
	Username  string    `firestore:"username"`
	Timestamp time.Time `firestore:"timestamp"`
}

// Quiz is one question inside a QuizCollection.
type Quiz struct {
	Question      string   `firestore:"question"`
	Options       []string `firestore:"options"`
	CorrectAnswer int      `firestore:"correctAnswer"`
}

// QuizCollection is an admin-authored set of questions.
type QuizCollection struct {
	ID      string `firestore:"id"`
	Title   string `firestore:"title"`
	Quizzes []Quiz `firestore:"quizzes"`
}

// AnswerRecord captures one answered question inside a submission.
type AnswerRecord struct {
	Question       string `firestore:"question"`
	SelectedAnswer int    `firestore:"selectedAnswer"`
	CorrectAnswer  int    `firestore:"correctAnswer"`
	IsCorrect      bool   `firestore:"isCorrect"`
}

// QuizAnswer is one quiz submission.  There is no update path; retakes
// create new documents, so attempts are counted by grouping on email.
type QuizAnswer struct {
	ID             string         `firestore:"id"`
	QuizTitle      string         `firestore:"quizTitle"`
	EmployeeName   string         `firestore:"employeeName"`
	EmployeeEmail  string         `firestore:"employeeEmail"`
	Answers        []AnswerRecord `firestore:"answers"`
	Score          int            `firestore:"score"`
	TotalQuestions int            `firestore:"totalQuestions"`
	Timestamp      time.Time      `firestore:"timestamp"`
}
