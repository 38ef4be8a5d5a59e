// Package mail decodes email-body blobs into the text handed to extraction.
package mail

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/jhillyerd/enmime"
	"github.com/rotisserie/eris"
)

// Message is a decoded email body.
type Message struct {
	Subject string
	Body    string
	// MIME reports whether the blob was a full MIME message.
	MIME bool
}

var (
	subjectRe    = regexp.MustCompile(`(?im)^Subject:[ \t]*([^\r\n]+)`)
	mimeHeaderRe = regexp.MustCompile(`(?im)^(?:MIME-Version|Content-Type)[ \t]*:`)
	blockTagRe   = regexp.MustCompile(`(?i)<\s*(?:br|/p|/div|/tr|/li|/h[1-6])\s*/?\s*>`)
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	entityRe     = regexp.MustCompile(`&[a-zA-Z0-9#]*;`)
)

// Decode turns raw blob bytes into a Message. Blobs whose header block
// declares MIME are parsed with enmime, preferring the text part; anything
// else is treated as an already decoded body.
func Decode(raw []byte) (Message, error) {
	if isMIME(raw) {
		env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
		if err != nil {
			return Message{}, eris.Wrap(err, "mail: parse MIME message")
		}
		body := env.Text
		if strings.TrimSpace(body) == "" && env.HTML != "" {
			body = StripHTML(env.HTML)
		}
		return Message{
			Subject: strings.TrimSpace(env.GetHeader("Subject")),
			Body:    body,
			MIME:    true,
		}, nil
	}

	body := strings.ToValidUTF8(string(raw), "�")
	return Message{Subject: Subject(body), Body: body}, nil
}

// Subject returns the first "Subject:" line value, or "".
func Subject(text string) string {
	if m := subjectRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// isMIME reports whether the header block (text before the first blank
// line) carries a MIME header.
func isMIME(raw []byte) bool {
	head := raw
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		head = raw[:i]
	}
	if i := bytes.Index(head, []byte("\r\n\r\n")); i >= 0 {
		head = head[:i]
	}
	return mimeHeaderRe.Match(head)
}

// StripHTML reduces an HTML body to text, keeping block boundaries as
// newlines so line-oriented extraction still works.
func StripHTML(html string) string {
	text := blockTagRe.ReplaceAllString(html, "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = entityRe.ReplaceAllStringFunc(text, func(entity string) string {
		switch entity {
		case "&amp;":
			return "&"
		case "&lt;":
			return "<"
		case "&gt;":
			return ">"
		case "&quot;":
			return "\""
		case "&apos;", "&#39;":
			return "'"
		case "&pound;":
			return "£"
		case "&euro;":
			return "€"
		default:
			return " "
		}
	})
	return text
}
