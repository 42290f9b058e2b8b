package dblayer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"drilldeck/backend"
	"drilldeck/dbtypes"

	"github.com/google/uuid"
)

// CreateMessage files a support ticket.  The ticket label is a
// client-generated random tag; the backend assigns the document ID.
func (db *DB) CreateMessage(ctx context.Context, user *dbtypes.CurrentUser, text string) (*dbtypes.Message, error) {
	username := user.Username
	if username == "" {
		username = "Anonymous"
	}

	message := &dbtypes.Message{
		TicketID:  "TICKET-" + strings.ToUpper(uuid.New().String()[:8]),
		Message:   text,
		Username:  username,
		UserID:    user.UID,
		Timestamp: time.Now(),
	}

	id, err := db.docs.Add(ctx, MessagesCollection, message)
	if err != nil {
		return nil, fmt.Errorf("while adding ticket message: %w", err)
	}
	message.ID = id
	return message, nil
}

// ListMessages lists ticket messages newest-first.
func (db *DB) ListMessages(ctx context.Context) ([]*dbtypes.Message, error) {
	docs, err := db.docs.Query(ctx, backend.Query{
		Collection: MessagesCollection,
		OrderBy:    "timestamp",
		Desc:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("while querying ticket messages: %w", err)
	}

	var messages []*dbtypes.Message
	for _, doc := range docs {
		message := &dbtypes.Message{}
		if err := doc.DataTo(message); err != nil {
			return nil, fmt.Errorf("while unmarshaling ticket message %s: %w", doc.ID(), err)
		}
		message.ID = doc.ID()
		messages = append(messages, message)
	}
	return messages, nil
}

// CreateFeedback records an admin answer for a ticket message.
func (db *DB) CreateFeedback(ctx context.Context, messageID, text, username string) (*dbtypes.Feedback, error) {
	feedback := &dbtypes.Feedback{
		MessageID: messageID,
		Feedback:  text,
		Username:  username,
		Timestamp: time.Now(),
	}

	id, err := db.docs.Add(ctx, FeedbackCollection, feedback)
	if err != nil {
		return nil, fmt.Errorf("while adding feedback: %w", err)
	}
	feedback.ID = id
	return feedback, nil
}

// ListFeedback lists all feedback records newest-first.
func (db *DB) ListFeedback(ctx context.Context) ([]*dbtypes.Feedback, error) {
	docs, err := db.docs.Query(ctx, backend.Query{
		Collection: FeedbackCollection,
		OrderBy:    "timestamp",
		Desc:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("while querying feedback: %w", err)
	}

	var feedbacks []*dbtypes.Feedback
	for _, doc := range docs {
		feedback := &dbtypes.Feedback{}
		if err := doc.DataTo(feedback); err != nil {
			return nil, fmt.Errorf("while unmarshaling feedback %s: %w", doc.ID(), err)
		}
		feedback.ID = doc.ID()
		feedbacks = append(feedbacks, feedback)
	}
	return feedbacks, nil
}

// FeedbackByMessage groups feedback records by the ticket message they
// answer.
func FeedbackByMessage(feedbacks []*dbtypes.Feedback) map[string][]*dbtypes.Feedback {
	byMessage := map[string][]*dbtypes.Feedback{}
	for _, feedback := range feedbacks {
		byMessage[feedback.MessageID] = append(byMessage[feedback.MessageID], feedback)
	}
	return byMessage
}
