package uitemplates

import "html/template"

type QuizListEntry struct {
	Title    string
	TakeLink string
}

type EmployeeQuizListParams struct {
	Quizzes []QuizListEntry
}

var employeeQuizListText = `{{define "title"}}Quizzes{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li><li class="breadcrumb-item active" aria-current="page">Quizzes</li>
{{- end}}

{{define "content"}}
<p><a href="/employee">Back to Training Modules</a></p>
{{range .Quizzes}}
<p><a href="{{.TakeLink}}">{{.Title}}</a></p>
{{else}}
<p>No quizzes are available yet.</p>
{{end}}
{{end}}
`

var EmployeeQuizListTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(employeeQuizListText))

type TakeQuizQuestion struct {
	Index    int
	Question string
	Options  []string
}

type TakeQuizParams struct {
	UserError string
	ID        string
	Title     string
	Questions []TakeQuizQuestion
}

var takeQuizText = `{{define "title"}}{{.Title}}{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li><li class="breadcrumb-item"><a href="/employee/quiz">Quizzes</a></li><li class="breadcrumb-item active" aria-current="page">{{.Title}}</li>
{{- end}}

{{define "content"}}
{{if .UserError}}<div class="alert alert-danger">{{.UserError}}</div>{{end}}
<form method="POST">
  <input type="hidden" name="id" value="{{.ID}}">
  {{range .Questions}}
  <fieldset class="mb-3">
    <legend>{{.Question}}</legend>
    {{$index := .Index}}
    {{range $optionIndex, $option := .Options}}
    <div class="form-check">
      <input class="form-check-input" type="radio" name="answer-{{$index}}" value="{{$optionIndex}}" id="answer-{{$index}}-{{$optionIndex}}">
      <label class="form-check-label" for="answer-{{$index}}-{{$optionIndex}}">{{$option}}</label>
    </div>
    {{end}}
  </fieldset>
  {{end}}
  <input type="submit" value="Submit Answers">
</form>
{{end}}
`

var TakeQuizTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(takeQuizText))

type QuizResultAnswer struct {
	Question   string
	Selected   string
	Correct    string
	WasCorrect bool
}

type QuizResultParams struct {
	Title          string
	Score          int
	TotalQuestions int
	Answers        []QuizResultAnswer
}

var quizResultText = `{{define "title"}}Quiz Result{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li><li class="breadcrumb-item"><a href="/employee/quiz">Quizzes</a></li><li class="breadcrumb-item active" aria-current="page">Result</li>
{{- end}}

{{define "content"}}
<p>You scored {{.Score}} out of {{.TotalQuestions}} on {{.Title}}.</p>
{{range .Answers}}
<div class="mb-2">
  <p>{{.Question}}</p>
  {{if .WasCorrect}}
  <p class="text-success">Correct!</p>
  {{else}}
  <p class="text-danger">Wrong! You picked {{.Selected}}; the correct answer is {{.Correct}}.</p>
  {{end}}
</div>
{{end}}
{{end}}
`

var QuizResultTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(quizResultText))
