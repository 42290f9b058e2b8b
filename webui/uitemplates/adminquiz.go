package uitemplates

import "html/template"

type AdminQuizEntry struct {
	Title       string
	Attempts    int
	ResultsLink string
}

type AdminQuizListParams struct {
	UserError   string
	FieldErrors map[string]string

	// QuestionCount drives how many question blocks the authoring form
	// renders. QuestionIndexes is 0..QuestionCount-1, and OptionIndexes
	// is always 0..3.
	QuestionCount   int
	QuestionIndexes []int
	OptionIndexes   []int

	Quizzes []AdminQuizEntry
}

var adminQuizListText = `{{define "title"}}Manage Quizzes{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li><li class="breadcrumb-item"><a href="/admin">Manage Training Modules</a></li><li class="breadcrumb-item active" aria-current="page">Manage Quizzes</li>
{{- end}}

{{define "content"}}
{{if .UserError}}<div class="alert alert-danger">{{.UserError}}</div>{{end}}
<h4>Existing Quizzes</h4>
{{range .Quizzes}}
<p><a href="{{.ResultsLink}}">{{.Title}}</a> &middot; {{.Attempts}} attempt(s)</p>
{{else}}
<p>No quizzes have been created yet.</p>
{{end}}
<h4 class="mt-4">Create a Quiz</h4>
<form method="GET">
  <label for="questions">Number of questions</label>
  <input type="number" name="questions" id="questions" min="1" max="20" value="{{.QuestionCount}}">
  <input type="submit" value="Set">
</form>
<form method="POST" class="mt-3">
  <label for="title">Title</label>
  <input class="form-control" type="text" name="title" id="title" required>
  {{with .FieldErrors.title}}<div class="text-danger">{{.}}</div>{{end}}
  {{$fieldErrors := .FieldErrors}}
  {{$optionIndexes := .OptionIndexes}}
  {{range $questionIndex := .QuestionIndexes}}
  <fieldset class="mt-3">
    <legend>Question {{$questionIndex}}</legend>
    <input class="form-control" type="text" name="question-{{$questionIndex}}" placeholder="Question text" required>
    {{range $optionIndex := $optionIndexes}}
    <div class="form-check">
      <input class="form-check-input" type="radio" name="correct-{{$questionIndex}}" value="{{$optionIndex}}" id="correct-{{$questionIndex}}-{{$optionIndex}}">
      <label class="form-check-label" for="correct-{{$questionIndex}}-{{$optionIndex}}">
        <input type="text" name="option-{{$questionIndex}}-{{$optionIndex}}" placeholder="Option {{$optionIndex}}" required>
      </label>
    </div>
    {{end}}
  </fieldset>
  {{end}}
  {{with $fieldErrors.questions}}<div class="text-danger">{{.}}</div>{{end}}
  <input type="submit" class="mt-3" value="Create Quiz">
</form>
{{end}}
`

var AdminQuizListTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(adminQuizListText))

type QuizAttemptRow struct {
	Username    string
	Email       string
	Score       int
	Total       int
	SubmittedOn string
}

type QuizResultsParams struct {
	Title              string
	UniqueParticipants int
	Attempts           []QuizAttemptRow
}

var quizResultsText = `{{define "title"}}Quiz Results{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li><li class="breadcrumb-item"><a href="/admin/quiz">Manage Quizzes</a></li><li class="breadcrumb-item active" aria-current="page">Results</li>
{{- end}}

{{define "content"}}
<p>{{.UniqueParticipants}} employee(s) have attempted {{.Title}}.</p>
<table class="table">
  <thead>
    <tr><th>Employee</th><th>Email</th><th>Score</th><th>Submitted</th></tr>
  </thead>
  <tbody>
    {{range .Attempts}}
    <tr><td>{{.Username}}</td><td>{{.Email}}</td><td>{{.Score}} / {{.Total}}</td><td>{{.SubmittedOn}}</td></tr>
    {{end}}
  </tbody>
</table>
{{end}}
`

var QuizResultsTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(quizResultsText))
