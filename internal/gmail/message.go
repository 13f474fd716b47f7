package gmail

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"google.golang.org/api/gmail/v1"

	"business-admin/internal/model"
)

// toEmail maps a full Gmail message onto an uncategorized Email.
func toEmail(userID string, message *gmail.Message) *model.Email {
	var subject, from, to string
	body := ""
	if message.Payload != nil {
		headers := headerMap(message.Payload.Headers)
		subject = headers["subject"]
		from = headers["from"]
		to = headers["to"]
		body = extractBody(message.Payload)
	}
	if subject == "" {
		subject = message.Snippet
	}
	if strings.TrimSpace(body) == "" {
		body = message.Snippet
	}

	var receivedAt time.Time
	if message.InternalDate > 0 {
		receivedAt = time.UnixMilli(message.InternalDate).UTC()
	}

	email := model.NewEmail(userID, message.Id, from, subject, body, receivedAt)
	email.To = to
	return email
}

// extractBody prefers text/plain parts, descending into nested multiparts,
// and falls back to the visible text of the HTML part.
func extractBody(payload *gmail.MessagePart) string {
	if text := findPart(payload, "text/plain"); text != "" {
		return text
	}
	if html := findPart(payload, "text/html"); html != "" {
		return htmlText(html)
	}
	return ""
}

func findPart(part *gmail.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if len(part.Parts) == 0 {
		if part.MimeType != mimeType && !(part.MimeType == "" && mimeType == "text/plain") {
			return ""
		}
		if part.Body == nil || part.Body.Data == "" {
			return ""
		}
		decoded, err := decodeBase64URL(part.Body.Data)
		if err != nil {
			return ""
		}
		return decoded
	}
	for _, child := range part.Parts {
		if body := findPart(child, mimeType); body != "" {
			return body
		}
	}
	return ""
}

// headerMap keys headers by lowercased name.
func headerMap(headers []*gmail.MessagePartHeader) map[string]string {
	m := make(map[string]string, len(headers))
	for _, h := range headers {
		m[strings.ToLower(h.Name)] = h.Value
	}
	return m
}

// decodeBase64URL accepts Gmail's base64url content with or without padding.
func decodeBase64URL(data string) (string, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// blockElements end a run of text; inline elements do not.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "ul": true, "ol": true, "blockquote": true, "pre": true, "hr": true,
	"section": true, "article": true, "header": true, "footer": true,
}

// htmlText returns the readable text of an HTML body. Head, script and style
// content never reaches the categorizer.
func htmlText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("head, script, style, noscript, template").Remove()

	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, node *goquery.Selection) {
			name := goquery.NodeName(node)
			switch {
			case name == "#text":
				b.WriteString(node.Text())
			case strings.HasPrefix(name, "#"):
				// comments
			default:
				walk(node)
				if blockElements[name] {
					b.WriteByte(' ')
				}
			}
		})
	}
	walk(doc.Selection)
	return strings.Join(strings.Fields(b.String()), " ")
}
