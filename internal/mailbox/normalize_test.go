package mailbox

import (
	"encoding/base64"
	"testing"

	"google.golang.org/api/gmail/v1"

	"github.com/nmisal/mailspend/internal/domain"
)

func b64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestExtractPlainText(t *testing.T) {
	tests := []struct {
		name string
		part *gmail.MessagePart
		want string
	}{
		{
			name: "nil payload",
			part: nil,
			want: "",
		},
		{
			name: "direct text/plain body",
			part: &gmail.MessagePart{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: b64("INR 450.00 debited from card x1234")},
			},
			want: "INR 450.00 debited from card x1234",
		},
		{
			name: "multipart picks first text/plain",
			part: &gmail.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<b>hi</b>")}},
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("plain version")}},
				},
			},
			want: "plain version",
		},
		{
			name: "nested multipart",
			part: &gmail.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "multipart/alternative",
						Parts: []*gmail.MessagePart{
							{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("deep plain")}},
						},
					},
				},
			},
			want: "deep plain",
		},
		{
			name: "html only yields empty",
			part: &gmail.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<b>hi</b>")}},
				},
			},
			want: "",
		},
		{
			name: "text/plain with charset parameter",
			part: &gmail.MessagePart{
				MimeType: "text/plain; charset=UTF-8",
				Body:     &gmail.MessagePartBody{Data: b64("with charset")},
			},
			want: "with charset",
		},
		{
			name: "padded base64url still decodes",
			part: &gmail.MessagePart{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("padded"))},
			},
			want: "padded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractPlainText(tt.part)
			if got != tt.want {
				t.Errorf("extractPlainText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	msg := domain.SourceMessage{
		Snippet: "  snippet text  ",
		Body:    "\nbody text\n",
	}

	if got := NormalizeText(msg, false); got != "snippet text" {
		t.Errorf("NormalizeText(preferBody=false) = %q, want %q", got, "snippet text")
	}
	if got := NormalizeText(msg, true); got != "body text" {
		t.Errorf("NormalizeText(preferBody=true) = %q, want %q", got, "body text")
	}

	noBody := domain.SourceMessage{Snippet: "only snippet", Body: "   "}
	if got := NormalizeText(noBody, true); got != "only snippet" {
		t.Errorf("NormalizeText with blank body = %q, want snippet fallback", got)
	}
}

func TestListFilterQuery(t *testing.T) {
	tests := []struct {
		name   string
		filter ListFilter
		want   string
	}{
		{"unread from sender", ListFilter{FromAddress: "alerts@somebank.com", OnlyUnread: true}, "from:alerts@somebank.com is:unread"},
		{"historical import", ListFilter{FromAddress: "alerts@somebank.com", OnlyUnread: false}, "from:alerts@somebank.com"},
		{"empty filter", ListFilter{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Query(); got != tt.want {
				t.Errorf("Query() = %q, want %q", got, tt.want)
			}
		})
	}
}
