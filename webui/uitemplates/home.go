package uitemplates

import "html/template"

type HomeParams struct {
	LoggedIn bool
	Username string
}

var homeText = `{{define "title"}}Home{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item active" aria-current="page">Home</li>
{{- end}}

{{define "content"}}
{{if .LoggedIn}}
You are signed in, {{.Username}}.
{{else}}
<p>Security-awareness training for your workplace.</p>
<p><a href="/log-in">Log In</a> or <a href="/register">Register</a></p>
{{end}}
{{end}}
`

var HomeTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(homeText))
