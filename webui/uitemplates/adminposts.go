package uitemplates

import "html/template"

type AdminPostsParams struct {
	Username string
	Posts    []FeedPost
}

var adminPostsText = `{{define "title"}}Manage Training Modules{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li><li class="breadcrumb-item active" aria-current="page">Manage Training Modules</li>
{{- end}}

{{define "content"}}
<p>
  Welcome, {{.Username}}.
  <a href="/admin/create-post">New Module</a> | <a href="/admin/quiz">Quizzes</a> | <a href="/admin/tickets">Tickets</a> | <a href="/admin/people">People</a> | <a href="/profile">Profile</a> | <a href="/log-out">Log Out</a>
</p>
{{range .Posts}}
<div class="card mb-3">
  <div class="card-body">
    <p>{{.Description}}</p>
    {{range .ImageURLs}}<img src="{{.}}" class="img-thumbnail" style="max-width: 10rem;">{{end}}
    <p class="text-muted">By {{.Author}} on {{.PostedOn}} &middot; {{.LikeCount}} like(s)</p>
    <form method="POST" action="/admin/delete-post">
      <input type="hidden" name="post-id" value="{{.ID}}">
      <input type="submit" class="btn btn-sm btn-danger" value="Delete">
    </form>
  </div>
</div>
{{else}}
<p>No training modules have been published yet.</p>
{{end}}
{{end}}
`

var AdminPostsTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(adminPostsText))
