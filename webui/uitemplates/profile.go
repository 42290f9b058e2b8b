package uitemplates

import "html/template"

type ProfileParams struct {
	UserError   string
	FieldErrors map[string]string
	Username    string
	Email       string
	Role        string
	PhotoURL    string
	Saved       bool
}

var profileText = `{{define "title"}}Profile{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li><li class="breadcrumb-item active" aria-current="page">Profile</li>
{{- end}}

{{define "content"}}
{{if .UserError}}<div class="alert alert-danger">{{.UserError}}</div>{{end}}
{{if .Saved}}<div class="alert alert-success">Profile saved.</div>{{end}}
<p>Signed in as {{.Email}} ({{.Role}}).</p>
{{with .PhotoURL}}<img src="{{.}}" class="img-thumbnail mb-3" style="max-width: 10rem;" alt="Profile photo">{{end}}
<form method="POST" enctype="multipart/form-data">
  <label for="username">Username</label>
  <input type="text" name="username" id="username" value="{{.Username}}" required>
  {{with .FieldErrors.username}}<div class="text-danger">{{.}}</div>{{end}}
  <label for="photo" class="mt-2">Profile photo</label>
  <input class="form-control" type="file" name="photo" id="photo" accept="image/*">
  <input type="submit" class="mt-2" value="Save">
</form>
{{end}}
`

var ProfileTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(profileText))
