package uitemplates

import "html/template"

type CreatePostParams struct {
	UserError   string
	FieldErrors map[string]string
}

var createPostText = `{{define "title"}}New Training Module{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li><li class="breadcrumb-item"><a href="/admin">Manage Training Modules</a></li><li class="breadcrumb-item active" aria-current="page">New Training Module</li>
{{- end}}

{{define "content"}}
{{if .UserError}}<div class="alert alert-danger">{{.UserError}}</div>{{end}}
<form method="POST" enctype="multipart/form-data">
  <label for="description">Description</label>
  <textarea class="form-control" name="description" id="description" rows="6" required></textarea>
  {{with .FieldErrors.description}}<div class="text-danger">{{.}}</div>{{end}}
  <label for="images" class="mt-2">Images</label>
  <input class="form-control" type="file" name="images" id="images" accept="image/*" multiple>
  <input type="submit" class="mt-2" value="Publish">
</form>
{{end}}
`

var CreatePostTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(createPostText))
