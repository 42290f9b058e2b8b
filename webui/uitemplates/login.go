package uitemplates

import "html/template"

type LogInParams struct {
	UserError   string
	FieldErrors map[string]string
}

var logInText = `{{define "title"}}Log In{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li><li class="breadcrumb-item active" aria-current="page">Log In</li>
{{- end}}

{{define "content"}}
{{if .UserError}}<div class="alert alert-danger">{{.UserError}}</div>{{end}}
<form method="POST">
  <label for="email">Email</label>
  <input type="email" name="email" id="email" required>
  {{with .FieldErrors.email}}<div class="text-danger">{{.}}</div>{{end}}
  <label for="password">Password</label>
  <input type="password" name="password" id="password" required>
  {{with .FieldErrors.password}}<div class="text-danger">{{.}}</div>{{end}}
  <input type="submit" value="Log In">
</form>
<p class="mt-3">No account yet? <a href="/register">Register</a></p>
{{end}}
`

var LogInTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(logInText))
