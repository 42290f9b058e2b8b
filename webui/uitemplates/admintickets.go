package uitemplates

import "html/template"

type AdminTicketEntry struct {
	MessageID   string
	TicketID    string
	Username    string
	Description string
	FiledOn     string
	Responses   []string
}

type AdminTicketsParams struct {
	Tickets []AdminTicketEntry
}

var adminTicketsText = `{{define "title"}}Tickets{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li><li class="breadcrumb-item"><a href="/admin">Manage Training Modules</a></li><li class="breadcrumb-item active" aria-current="page">Tickets</li>
{{- end}}

{{define "content"}}
{{range .Tickets}}
<div class="card mb-3">
  <div class="card-body">
    <h5>{{.TicketID}}</h5>
    <p>{{.Description}}</p>
    <p class="text-muted">Filed by {{.Username}} on {{.FiledOn}}</p>
    {{range .Responses}}
    <div class="alert alert-info">{{.}}</div>
    {{end}}
    <form method="POST" action="/admin/feedback">
      <input type="hidden" name="message-id" value="{{.MessageID}}">
      <label for="feedback-{{.MessageID}}">Respond</label>
      <textarea class="form-control" name="feedback" id="feedback-{{.MessageID}}" rows="2" required></textarea>
      <input type="submit" class="mt-2" value="Send Response">
    </form>
  </div>
</div>
{{else}}
<p>No tickets have been filed.</p>
{{end}}
{{end}}
`

var AdminTicketsTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(adminTicketsText))
