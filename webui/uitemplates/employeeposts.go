package uitemplates

import "html/template"

type FeedPost struct {
	ID          string
	Description string
	ImageURLs   []string
	Author      string
	PostedOn    string
	LikeCount   int
	LikedByMe   bool
}

type EmployeePostsParams struct {
	Username string
	Posts    []FeedPost
}

var employeePostsText = `{{define "title"}}Training Modules{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li><li class="breadcrumb-item active" aria-current="page">Training Modules</li>
{{- end}}

{{define "content"}}
<p>
  Welcome, {{.Username}}.
  <a href="/employee/quiz">Quizzes</a> | <a href="/employee/ticket">Support Tickets</a> | <a href="/profile">Profile</a> | <a href="/log-out">Log Out</a>
</p>
{{range .Posts}}
<div class="card mb-3">
  <div class="card-body">
    <p>{{.Description}}</p>
    {{range .ImageURLs}}<img src="{{.}}" class="img-thumbnail" style="max-width: 10rem;">{{end}}
    <p class="text-muted">By {{.Author}} on {{.PostedOn}} &middot; {{.LikeCount}} like(s)</p>
    <form method="POST" action="/employee/like">
      <input type="hidden" name="post-id" value="{{.ID}}">
      {{if .LikedByMe}}
      <input type="hidden" name="action" value="unlike">
      <input type="submit" value="Unlike">
      {{else}}
      <input type="hidden" name="action" value="like">
      <input type="submit" value="Like">
      {{end}}
    </form>
  </div>
</div>
{{else}}
<p>No training modules have been published yet.</p>
{{end}}
{{end}}
`

var EmployeePostsTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(employeePostsText))
