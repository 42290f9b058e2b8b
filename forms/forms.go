// Package forms validates mutation-flow input before any remote call is
// made.  Each form returns per-field error text; an empty result means
// the flow may proceed.
package forms

import "strings"

// Errors maps field name to a human-readable message.
type Errors map[string]string

func (e Errors) Ok() bool { return len(e) == 0 }

// Get returns the message for a field, or "".
func (e Errors) Get(field string) string { return e[field] }

func validateEmail(email string, errs Errors) {
	if email == "" {
		errs["email"] = "Email is required"
	} else if !strings.Contains(email, "@") {
		errs["email"] = "Invalid email address format"
	}
}

func validatePassword(password string, errs Errors) {
	switch {
	case password == "":
		errs["password"] = "Password is required"
	case len(password) < 8:
		errs["password"] = "Password must be at least 8 characters long"
	case len(password) > 30:
		errs["password"] = "Password cannot exceed 30 characters"
	}
}

// SignUp is the registration form.
type SignUp struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	Role            string
	PrivacyPolicy   bool
}

func (f *SignUp) Validate() Errors {
	errs := Errors{}

	if f.Username == "" {
		errs["username"] = "Username is required"
	} else if len(f.Username) > 20 {
		errs["username"] = "Username cannot exceed 20 characters"
	}

	validateEmail(f.Email, errs)
	validatePassword(f.Password, errs)

	if f.PasswordConfirm == "" {
		errs["passwordConfirm"] = "Password confirmation is required"
	} else if f.Password != f.PasswordConfirm {
		errs["passwordConfirm"] = "Passwords must match"
	}

	if f.Role != "user" && f.Role != "admin" {
		errs["role"] = "Role is required"
	}

	if !f.PrivacyPolicy {
		errs["privacyPolicy"] = "Privacy policy acceptance is required"
	}

	return errs
}

// SignIn is the login form.
type SignIn struct {
	Email    string
	Password string
}

func (f *SignIn) Validate() Errors {
	errs := Errors{}
	validateEmail(f.Email, errs)
	validatePassword(f.Password, errs)
	return errs
}

// CreatePost is the admin post-authoring form.
type CreatePost struct {
	Description string
}

func (f *CreatePost) Validate() Errors {
	errs := Errors{}

	description := strings.TrimSpace(f.Description)
	switch {
	case description == "":
		errs["description"] = "Description is required"
	case len(description) < 10:
		errs["description"] = "Description must be at least 10 characters"
	case len(description) > 2500:
		errs["description"] = "Description cannot be longer than 2500 characters"
	}

	return errs
}

// Ticket is the support-ticket form.
type Ticket struct {
	Message string
}

func (f *Ticket) Validate() Errors {
	errs := Errors{}
	if strings.TrimSpace(f.Message) == "" {
		errs["message"] = "Message cannot be empty"
	}
	return errs
}

// Feedback is the admin ticket-answer form.
type Feedback struct {
	MessageID string
	Feedback  string
}

func (f *Feedback) Validate() Errors {
	errs := Errors{}
	if f.MessageID == "" {
		errs["messageId"] = "Please select a ticket"
	}
	if strings.TrimSpace(f.Feedback) == "" {
		errs["feedback"] = "Please enter feedback"
	}
	return errs
}

// QuizQuestion is one question inside the quiz-authoring form.
// CorrectAnswer is -1 until the author picks an option.
type QuizQuestion struct {
	Question      string
	Options       [4]string
	CorrectAnswer int
}

// CreateQuiz is the quiz-authoring form.
type CreateQuiz struct {
	Title     string
	Questions []QuizQuestion
}

func (f *CreateQuiz) Validate() Errors {
	errs := Errors{}

	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "Please provide a title for the quiz"
	}

	if len(f.Questions) == 0 {
		errs["questions"] = "A quiz needs at least one question"
		return errs
	}

	for _, q := range f.Questions {
		if strings.TrimSpace(q.Question) == "" {
			errs["questions"] = "Please fill in all questions, options, and correct answers"
			return errs
		}
		for _, option := range q.Options {
			if strings.TrimSpace(option) == "" {
				errs["questions"] = "Please fill in all questions, options, and correct answers"
				return errs
			}
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			errs["questions"] = "Please fill in all questions, options, and correct answers"
			return errs
		}
	}

	return errs
}

// EditProfile is the display-name edit form.
type EditProfile struct {
	Username string
}

func (f *EditProfile) Validate() Errors {
	errs := Errors{}
	if f.Username == "" {
		errs["username"] = "Username is required"
	} else if len(f.Username) > 20 {
		errs["username"] = "Username cannot exceed 20 characters"
	}
	return errs
}
