package mailbox

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/nmisal/mailspend/internal/domain"
)

// gmailUser is the special value the Gmail API accepts for "the authenticated
// account".
const gmailUser = "me"

// ListFilter selects which mailbox messages a batch run considers.
// OnlyUnread=false with a MaxResults cap is the historical-import path.
type ListFilter struct {
	FromAddress string // sender to match, e.g. "alerts@somebank.com"
	OnlyUnread  bool
	MaxResults  int64 // 0 means provider default
}

// Query renders the filter as a Gmail search query.
func (f ListFilter) Query() string {
	parts := []string{}
	if f.FromAddress != "" {
		parts = append(parts, "from:"+f.FromAddress)
	}
	if f.OnlyUnread {
		parts = append(parts, "is:unread")
	}
	return strings.Join(parts, " ")
}

// GmailMailbox reads alert emails from a Gmail account. The OAuth consent
// flow happens elsewhere; this client only needs a token source that yields
// valid access tokens.
type GmailMailbox struct {
	svc *gmail.Service
}

// NewGmailMailbox creates a mailbox client from an OAuth2 token source.
func NewGmailMailbox(ctx context.Context, ts oauth2.TokenSource) (*GmailMailbox, error) {
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("NewGmailMailbox: create gmail service: %w", err)
	}
	return &GmailMailbox{svc: svc}, nil
}

// ListCandidateMessages lists messages matching the filter and fetches each
// one in full. The returned messages carry decoded plain-text bodies where
// the message has one.
func (m *GmailMailbox) ListCandidateMessages(ctx context.Context, filter ListFilter) ([]domain.SourceMessage, error) {
	call := m.svc.Users.Messages.List(gmailUser).Q(filter.Query())
	if filter.MaxResults > 0 {
		call = call.MaxResults(filter.MaxResults)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("ListCandidateMessages: list messages: %w", err)
	}

	messages := make([]domain.SourceMessage, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		msg, err := m.svc.Users.Messages.Get(gmailUser, ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("ListCandidateMessages: get message %s: %w", ref.Id, err)
		}
		messages = append(messages, toSourceMessage(msg))
	}
	return messages, nil
}

// MarkRead removes the UNREAD label from a message. Processed alerts drop out
// of the next unread-only listing.
func (m *GmailMailbox) MarkRead(ctx context.Context, messageID string) error {
	req := &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}
	if _, err := m.svc.Users.Messages.Modify(gmailUser, messageID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("MarkRead: modify message %s: %w", messageID, err)
	}
	return nil
}

func toSourceMessage(msg *gmail.Message) domain.SourceMessage {
	out := domain.SourceMessage{
		ID:           msg.Id,
		ThreadID:     msg.ThreadId,
		Snippet:      msg.Snippet,
		InternalDate: msg.InternalDate,
	}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch strings.ToLower(h.Name) {
			case "from":
				out.From = h.Value
			case "to":
				out.To = h.Value
			case "subject":
				out.Subject = h.Value
			case "date":
				out.Date = h.Value
			}
		}
		out.Body = extractPlainText(msg.Payload)
	}
	return out
}
