package uitemplates

import "html/template"

type RegisterParams struct {
	UserError   string
	FieldErrors map[string]string

	// AdminAllowed shows the role picker; the plain employee form pins
	// the role to "user".
	AdminAllowed bool
}

var registerText = `{{define "title"}}Register{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li><li class="breadcrumb-item active" aria-current="page">Register</li>
{{- end}}

{{define "content"}}
{{if .UserError}}<div class="alert alert-danger">{{.UserError}}</div>{{end}}
<form method="POST">
  <label for="username">Username</label>
  <input type="text" name="username" id="username" required>
  {{with .FieldErrors.username}}<div class="text-danger">{{.}}</div>{{end}}
  <label for="email">Email</label>
  <input type="email" name="email" id="email" required>
  {{with .FieldErrors.email}}<div class="text-danger">{{.}}</div>{{end}}
  <label for="password">Password</label>
  <input type="password" name="password" id="password" required>
  {{with .FieldErrors.password}}<div class="text-danger">{{.}}</div>{{end}}
  <label for="password-confirm">Repeat Password</label>
  <input type="password" name="password-confirm" id="password-confirm" required>
  {{with .FieldErrors.passwordConfirm}}<div class="text-danger">{{.}}</div>{{end}}
  {{if .AdminAllowed}}
  <label for="role">Role</label>
  <select name="role" id="role">
    <option value="user">Employee</option>
    <option value="admin">Admin</option>
  </select>
  {{else}}
  <input type="hidden" name="role" value="user">
  {{end}}
  {{with .FieldErrors.role}}<div class="text-danger">{{.}}</div>{{end}}
  <div class="form-check mt-2">
    <input class="form-check-input" type="checkbox" name="privacy-policy" id="privacy-policy" value="true">
    <label class="form-check-label" for="privacy-policy">I accept the Privacy Policy</label>
    {{with .FieldErrors.privacyPolicy}}<div class="text-danger">{{.}}</div>{{end}}
  </div>
  <input type="submit" value="Register">
</form>
{{end}}
`

var RegisterTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(registerText))
