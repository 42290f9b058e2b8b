package uitemplates

import "html/template"

type TicketEntry struct {
	TicketID    string
	Description string
	FiledOn     string
	Responses   []string
}

type TicketParams struct {
	UserError   string
	FieldErrors map[string]string
	Tickets     []TicketEntry
}

var ticketText = `{{define "title"}}Support Tickets{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li><li class="breadcrumb-item active" aria-current="page">Support Tickets</li>
{{- end}}

{{define "content"}}
<p><a href="/employee">Back to Training Modules</a></p>
{{if .UserError}}<div class="alert alert-danger">{{.UserError}}</div>{{end}}
<form method="POST">
  <label for="message">Describe your problem</label>
  <textarea class="form-control" name="message" id="message" rows="4" required></textarea>
  {{with .FieldErrors.message}}<div class="text-danger">{{.}}</div>{{end}}
  <input type="submit" value="File Ticket">
</form>
<h4 class="mt-4">Your Tickets</h4>
{{range .Tickets}}
<div class="card mb-3">
  <div class="card-body">
    <h5>{{.TicketID}}</h5>
    <p>{{.Description}}</p>
    <p class="text-muted">Filed on {{.FiledOn}}</p>
    {{range .Responses}}
    <div class="alert alert-info">{{.}}</div>
    {{else}}
    <p class="text-muted">No response yet.</p>
    {{end}}
  </div>
</div>
{{else}}
<p>You have not filed any tickets.</p>
{{end}}
{{end}}
`

var TicketTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(ticketText))
