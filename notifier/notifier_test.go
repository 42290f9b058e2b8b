package notifier

import (
	"context"
	"testing"
	"time"

	"drilldeck/backend/membackend"
	"drilldeck/dblayer"
	"drilldeck/dbtypes"
)

type sentDigest struct {
	toAddress string
	tickets   []string
}

// newTestNotifier builds a notifier over an in-memory database, with the
// send step replaced by a recorder.
func newTestNotifier() (*Notifier, *dblayer.DB, *[]sentDigest) {
	db := dblayer.New(membackend.NewDocStore(), membackend.NewFileStore(), dblayer.Policy{})
	n := New(db, nil, "bot@example.com", time.Hour)

	sent := &[]sentDigest{}
	n.send = func(ctx context.Context, toAddress string, unanswered []*dbtypes.Message) error {
		var tickets []string
		for _, message := range unanswered {
			tickets = append(tickets, message.TicketID)
		}
		*sent = append(*sent, sentDigest{toAddress: toAddress, tickets: tickets})
		return nil
	}

	return n, db, sent
}

func TestDigestPassSkipsAnsweredTickets(t *testing.T) {
	ctx := context.Background()
	n, db, sent := newTestNotifier()

	if err := db.SetUser(ctx, "uid-pam", &dbtypes.User{Role: dbtypes.RoleAdmin, Username: "Pam", Email: "pam@example.com"}); err != nil {
		t.Fatalf("SetUser: %v", err)
	}

	jim := &dbtypes.CurrentUser{Account: dbtypes.Account{UID: "uid-jim"}, Username: "Jim"}
	answered, err := db.CreateMessage(ctx, jim, "My badge stopped working.")
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	open, err := db.CreateMessage(ctx, jim, "I got a weird email from IT.")
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if _, err := db.CreateFeedback(ctx, answered.ID, "Reissued your badge.", "Pam"); err != nil {
		t.Fatalf("CreateFeedback: %v", err)
	}

	if err := n.digestPass(ctx); err != nil {
		t.Fatalf("digestPass: %v", err)
	}

	if len(*sent) != 1 {
		t.Fatalf("Sent %d digests, want 1", len(*sent))
	}
	got := (*sent)[0]
	if got.toAddress != "pam@example.com" {
		t.Errorf("Digest went to %q, want %q", got.toAddress, "pam@example.com")
	}
	if len(got.tickets) != 1 || got.tickets[0] != open.TicketID {
		t.Errorf("Digest covered tickets %v, want just %q", got.tickets, open.TicketID)
	}
}

func TestDigestPassOnlyMailsAdminsWithEmail(t *testing.T) {
	ctx := context.Background()
	n, db, sent := newTestNotifier()

	if err := db.SetUser(ctx, "uid-pam", &dbtypes.User{Role: dbtypes.RoleAdmin, Username: "Pam", Email: "pam@example.com"}); err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	if err := db.SetUser(ctx, "uid-jim", &dbtypes.User{Role: dbtypes.RoleUser, Username: "Jim", Email: "jim@example.com"}); err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	if err := db.SetUser(ctx, "uid-anon", &dbtypes.User{Role: dbtypes.RoleAdmin, Username: "Legacy Admin"}); err != nil {
		t.Fatalf("SetUser: %v", err)
	}

	if _, err := db.CreateMessage(ctx, &dbtypes.CurrentUser{Account: dbtypes.Account{UID: "uid-jim"}, Username: "Jim"}, "The VPN keeps dropping."); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	if err := n.digestPass(ctx); err != nil {
		t.Fatalf("digestPass: %v", err)
	}

	if len(*sent) != 1 || (*sent)[0].toAddress != "pam@example.com" {
		t.Errorf("Digests = %+v, want a single digest to pam@example.com", *sent)
	}
}

func TestDigestPassAllAnsweredSendsNothing(t *testing.T) {
	ctx := context.Background()
	n, db, sent := newTestNotifier()

	if err := db.SetUser(ctx, "uid-pam", &dbtypes.User{Role: dbtypes.RoleAdmin, Username: "Pam", Email: "pam@example.com"}); err != nil {
		t.Fatalf("SetUser: %v", err)
	}

	message, err := db.CreateMessage(ctx, &dbtypes.CurrentUser{Account: dbtypes.Account{UID: "uid-jim"}, Username: "Jim"}, "My badge stopped working.")
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if _, err := db.CreateFeedback(ctx, message.ID, "Reissued your badge.", "Pam"); err != nil {
		t.Fatalf("CreateFeedback: %v", err)
	}

	if err := n.digestPass(ctx); err != nil {
		t.Fatalf("digestPass: %v", err)
	}
	if len(*sent) != 0 {
		t.Errorf("Sent %d digests, want 0 when every ticket has feedback", len(*sent))
	}
}
