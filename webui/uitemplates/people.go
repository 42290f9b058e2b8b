package uitemplates

import "html/template"

type PersonRow struct {
	Username string
	Email    string
	Role     string
}

type PeopleParams struct {
	People []PersonRow
}

var peopleText = `{{define "title"}}People{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li><li class="breadcrumb-item"><a href="/admin">Manage Training Modules</a></li><li class="breadcrumb-item active" aria-current="page">People</li>
{{- end}}

{{define "content"}}
<table class="table">
  <thead>
    <tr><th>Username</th><th>Email</th><th>Role</th></tr>
  </thead>
  <tbody>
    {{range .People}}
    <tr><td>{{.Username}}</td><td>{{.Email}}</td><td>{{.Role}}</td></tr>
    {{end}}
  </tbody>
</table>
{{end}}
`

var PeopleTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(peopleText))
