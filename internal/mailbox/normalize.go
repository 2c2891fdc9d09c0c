package mailbox

import (
	"encoding/base64"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/nmisal/mailspend/internal/domain"
)

// NormalizeText returns the text a batch run feeds into extraction: the
// decoded body when preferBody is set and a body exists, the snippet
// otherwise. The result is whitespace-trimmed and may be empty.
func NormalizeText(msg domain.SourceMessage, preferBody bool) string {
	if preferBody && strings.TrimSpace(msg.Body) != "" {
		return strings.TrimSpace(msg.Body)
	}
	return strings.TrimSpace(msg.Snippet)
}

// extractPlainText walks a Gmail payload tree and returns the first decoded
// text/plain part. Multipart containers are searched depth-first; a message
// with only HTML parts yields "".
func extractPlainText(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}

	if strings.HasPrefix(part.MimeType, "text/plain") {
		if part.Body != nil && part.Body.Data != "" {
			return decodeBody(part.Body.Data)
		}
		return ""
	}

	for _, child := range part.Parts {
		if text := extractPlainText(child); text != "" {
			return text
		}
	}

	// A non-multipart message can carry its body directly on the root part
	// with no MIME type worth trusting.
	if len(part.Parts) == 0 && part.Body != nil && part.Body.Data != "" && part.MimeType == "" {
		return decodeBody(part.Body.Data)
	}

	return ""
}

// decodeBody decodes Gmail's base64url body encoding. Gmail omits padding;
// fall back to the padded alphabet for safety.
func decodeBody(data string) string {
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	return ""
}
