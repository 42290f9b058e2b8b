package forms

import "testing"

func validSignUp() SignUp {
	return SignUp{
		Username:        "Pam",
		Email:           "pam@example.com",
		Password:        "hunter2222",
		PasswordConfirm: "hunter2222",
		Role:            "user",
		PrivacyPolicy:   true,
	}
}

func TestSignUpValid(t *testing.T) {
	form := validSignUp()
	if errs := form.Validate(); !errs.Ok() {
		t.Errorf("Validate = %v, want no errors", errs)
	}
}

func TestSignUpFieldErrors(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*SignUp)
		wantField string
	}{
		{name: "missing-username", mutate: func(f *SignUp) { f.Username = "" }, wantField: "username"},
		{name: "long-username", mutate: func(f *SignUp) { f.Username = "abcdefghijklmnopqrstu" }, wantField: "username"},
		{name: "missing-email", mutate: func(f *SignUp) { f.Email = "" }, wantField: "email"},
		{name: "malformed-email", mutate: func(f *SignUp) { f.Email = "pam.example.com" }, wantField: "email"},
		{name: "short-password", mutate: func(f *SignUp) { f.Password = "short"; f.PasswordConfirm = "short" }, wantField: "password"},
		{name: "long-password", mutate: func(f *SignUp) {
			f.Password = "0123456789012345678901234567890"
			f.PasswordConfirm = f.Password
		}, wantField: "password"},
		{name: "mismatched-confirmation", mutate: func(f *SignUp) { f.PasswordConfirm = "different11" }, wantField: "passwordConfirm"},
		{name: "missing-confirmation", mutate: func(f *SignUp) { f.PasswordConfirm = "" }, wantField: "passwordConfirm"},
		{name: "bad-role", mutate: func(f *SignUp) { f.Role = "superuser" }, wantField: "role"},
		{name: "privacy-policy-unchecked", mutate: func(f *SignUp) { f.PrivacyPolicy = false }, wantField: "privacyPolicy"},
	}

	for _, tc := range cases {
		form := validSignUp()
		tc.mutate(&form)

		errs := form.Validate()
		if errs.Get(tc.wantField) == "" {
			t.Errorf("%s: Validate = %v, want an error on field %q", tc.name, errs, tc.wantField)
		}
	}
}

func TestSignUpMismatchFlagsConfirmationField(t *testing.T) {
	form := validSignUp()
	form.PasswordConfirm = "other-password"

	errs := form.Validate()
	if errs.Get("password") != "" {
		t.Errorf("Mismatch flagged the password field: %v", errs)
	}
	if errs.Get("passwordConfirm") == "" {
		t.Errorf("Mismatch did not flag the confirmation field: %v", errs)
	}
}

func TestSignIn(t *testing.T) {
	form := SignIn{Email: "pam@example.com", Password: "hunter2222"}
	if errs := form.Validate(); !errs.Ok() {
		t.Errorf("Validate = %v, want no errors", errs)
	}

	form = SignIn{}
	errs := form.Validate()
	if errs.Get("email") == "" || errs.Get("password") == "" {
		t.Errorf("Empty sign-in Validate = %v, want errors on both fields", errs)
	}
}

func TestCreatePostBounds(t *testing.T) {
	short := CreatePost{Description: "too short"}
	if errs := short.Validate(); errs.Get("description") == "" {
		t.Errorf("Nine-character description passed validation")
	}

	longDescription := make([]byte, 2501)
	for i := range longDescription {
		longDescription[i] = 'a'
	}
	long := CreatePost{Description: string(longDescription)}
	if errs := long.Validate(); errs.Get("description") == "" {
		t.Errorf("2501-character description passed validation")
	}

	ok := CreatePost{Description: "Ten chars!"}
	if errs := ok.Validate(); !errs.Ok() {
		t.Errorf("Validate = %v, want no errors at the lower bound", errs)
	}
}

func validQuizQuestion() QuizQuestion {
	return QuizQuestion{
		Question:      "What do you do with a tailgater at the door?",
		Options:       [4]string{"Hold the door", "Ask for their badge", "Ignore them", "Wave them in"},
		CorrectAnswer: 1,
	}
}

func TestCreateQuiz(t *testing.T) {
	form := CreateQuiz{Title: "Physical Security", Questions: []QuizQuestion{validQuizQuestion()}}
	if errs := form.Validate(); !errs.Ok() {
		t.Errorf("Validate = %v, want no errors", errs)
	}

	form = CreateQuiz{Title: "Physical Security"}
	if errs := form.Validate(); errs.Get("questions") == "" {
		t.Errorf("Quiz with no questions passed validation")
	}

	missingOption := validQuizQuestion()
	missingOption.Options[2] = ""
	form = CreateQuiz{Title: "Physical Security", Questions: []QuizQuestion{missingOption}}
	if errs := form.Validate(); errs.Get("questions") == "" {
		t.Errorf("Quiz with a blank option passed validation")
	}

	noCorrect := validQuizQuestion()
	noCorrect.CorrectAnswer = -1
	form = CreateQuiz{Title: "Physical Security", Questions: []QuizQuestion{noCorrect}}
	if errs := form.Validate(); errs.Get("questions") == "" {
		t.Errorf("Quiz with no correct answer passed validation")
	}
}

func TestEditProfile(t *testing.T) {
	form := EditProfile{Username: "Pam"}
	if errs := form.Validate(); !errs.Ok() {
		t.Errorf("Validate = %v, want no errors", errs)
	}

	form = EditProfile{}
	if errs := form.Validate(); errs.Get("username") == "" {
		t.Errorf("Empty username passed validation")
	}
}
