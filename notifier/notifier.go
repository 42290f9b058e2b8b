// Package notifier periodically emails admins a digest of support
// tickets that have no feedback yet.
package notifier

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"drilldeck/dblayer"
	"drilldeck/dbtypes"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Notifier runs an infinite digest loop.
type Notifier struct {
	db             *dblayer.DB
	sendgridClient *sendgrid.Client
	fromAddress    string
	recheckPeriod  time.Duration

	// send delivers one digest.  It exists as a field so tests can
	// capture digests without a SendGrid account.
	send func(ctx context.Context, toAddress string, unanswered []*dbtypes.Message) error
}

func New(db *dblayer.DB, sendgridClient *sendgrid.Client, fromAddress string, recheckPeriod time.Duration) *Notifier {
	n := &Notifier{
		db:             db,
		sendgridClient: sendgridClient,
		fromAddress:    fromAddress,
		recheckPeriod:  recheckPeriod,
	}
	n.send = n.sendDigest
	return n
}

func (n *Notifier) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.recheckPeriod)
	defer ticker.Stop()

	// Run once right away --- the ticker doesn't fire until the tick
	// period has elapsed.
	if err := n.digestPass(ctx); err != nil {
		slog.ErrorContext(ctx, "Error during digest pass", slog.Any("err", err))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := n.digestPass(ctx); err != nil {
			slog.ErrorContext(ctx, "Error during digest pass", slog.Any("err", err))
		}
	}
}

func (n *Notifier) digestPass(ctx context.Context) error {
	slog.InfoContext(ctx, "Starting digest pass")
	defer func() {
		slog.InfoContext(ctx, "Finished digest pass")
	}()

	messages, err := n.db.ListMessages(ctx)
	if err != nil {
		return fmt.Errorf("while listing ticket messages: %w", err)
	}

	feedbacks, err := n.db.ListFeedback(ctx)
	if err != nil {
		return fmt.Errorf("while listing feedback: %w", err)
	}
	answered := dblayer.FeedbackByMessage(feedbacks)

	var unanswered []*dbtypes.Message
	for _, message := range messages {
		if len(answered[message.ID]) == 0 {
			unanswered = append(unanswered, message)
		}
	}
	if len(unanswered) == 0 {
		return nil
	}

	users, err := n.db.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("while listing users: %w", err)
	}

	for _, user := range users {
		if user.Role != dbtypes.RoleAdmin || user.Email == "" {
			continue
		}
		if err := n.send(ctx, user.Email, unanswered); err != nil {
			return fmt.Errorf("while sending digest to %s: %w", user.Email, err)
		}
	}

	return nil
}

const digestPlain = `
The following support tickets are waiting for feedback:
{{range . -}}
* {{.TicketID}} from {{.Username}} ({{.Timestamp.Format "2006-01-02 15:04"}}): {{.Message}}
{{end}}
`

var digestPlainTemplate = template.Must(template.New("digest").Parse(digestPlain))

func (n *Notifier) sendDigest(ctx context.Context, toAddress string, unanswered []*dbtypes.Message) error {
	message := mail.NewV3Mail()
	message.From = mail.NewEmail("Drilldeck Bot", n.fromAddress)
	message.Subject = "Drilldeck: tickets waiting for feedback"

	personalization := mail.NewPersonalization()
	personalization.To = append(personalization.To, mail.NewEmail("", toAddress))
	message.Personalizations = append(message.Personalizations, personalization)

	textContent := &bytes.Buffer{}
	if err := digestPlainTemplate.Execute(textContent, unanswered); err != nil {
		return fmt.Errorf("while templating digest email content: %w", err)
	}

	message.Content = append(message.Content, mail.NewContent("text/plain", textContent.String()))

	resp, err := n.sendgridClient.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("while sending mail through SendGrid: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("non-2XX response while sending mail through SendGrid: %d %s", resp.StatusCode, resp.Body)
	}

	return nil
}
