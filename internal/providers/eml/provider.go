// Package eml extracts text from RFC 822 email messages, including the
// text of PDF and spreadsheet attachments.
package eml

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
	"github.com/custodia-labs/reqsift/internal/logger"
)

// Ensure Provider implements the interface.
var _ driven.ContentProvider = (*Provider)(nil)

// Provider handles email messages.
// Attachments are delegated to the providers registered for their category.
type Provider struct {
	attachments map[domain.Category]driven.ContentProvider
}

// New creates an email provider. Attachment providers are optional; an
// attachment whose category has no provider is skipped.
func New(attachmentProviders ...driven.ContentProvider) *Provider {
	p := &Provider{attachments: make(map[domain.Category]driven.ContentProvider)}
	for _, ap := range attachmentProviders {
		if ap != nil {
			p.attachments[ap.Category()] = ap
		}
	}
	return p
}

// Category returns CategoryEmail.
func (p *Provider) Category() domain.Category {
	return domain.CategoryEmail
}

// message is the decoded content of one email.
type message struct {
	plain       []string
	html        []string
	attachments []attachment
}

type attachment struct {
	filename string
	data     []byte
}

// Extract returns the headers and body, followed by each supported attachment.
func (p *Provider) Extract(ctx context.Context, path string) (*domain.ExtractedContent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open email %s: %w", path, err)
	}
	defer f.Close()

	msg, err := mail.ReadMessage(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not an email message: %v", domain.ErrInvalidInput, path, err)
	}

	var m message
	if err := readPart(&m, msg.Header, msg.Body); err != nil {
		return nil, fmt.Errorf("read email body: %w", err)
	}

	var sb strings.Builder
	writeHeaders(&sb, msg.Header)
	sb.WriteString("\n")
	sb.WriteString(m.body())

	content := &domain.ExtractedContent{Path: path}
	for _, a := range m.attachments {
		text, tables, ok := p.extractAttachment(ctx, a)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "\n\nAttachment: %s\n", a.filename)
		sb.WriteString(text)
		content.Tables = append(content.Tables, tables...)
	}
	content.Text = sb.String()

	return content, nil
}

// body prefers plain text parts over HTML parts.
func (m *message) body() string {
	if len(m.plain) > 0 {
		return strings.Join(m.plain, "\n")
	}
	return strings.Join(m.html, "\n")
}

// extractAttachment writes the attachment to a temp file with its original
// extension and runs the matching provider over it. A provider that panics
// or returns no content loses only its own attachment.
func (p *Provider) extractAttachment(ctx context.Context, a attachment) (text string, tables []domain.Table, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("attachment %s: provider panic: %v", a.filename, r)
			text, tables, ok = "", nil, false
		}
	}()

	cat := domain.CategoryFromPath(a.filename)
	provider, ok := p.attachments[cat]
	if !ok {
		logger.Debug("skipping attachment %s: no provider for %s", a.filename, cat)
		return "", nil, false
	}

	dir, err := os.MkdirTemp("", "reqsift-eml-*")
	if err != nil {
		logger.Warn("attachment %s: %v", a.filename, err)
		return "", nil, false
	}
	defer os.RemoveAll(dir)

	tmp := filepath.Join(dir, "attachment"+strings.ToLower(filepath.Ext(a.filename)))
	if err := os.WriteFile(tmp, a.data, 0o600); err != nil {
		logger.Warn("attachment %s: %v", a.filename, err)
		return "", nil, false
	}

	content, err := provider.Extract(ctx, tmp)
	if err != nil {
		logger.Warn("attachment %s: %v", a.filename, err)
		return "", nil, false
	}
	if content == nil {
		logger.Warn("attachment %s: provider returned no content", a.filename)
		return "", nil, false
	}
	return content.Text, content.Tables, true
}

// header is the subset of header access shared by mail and multipart headers.
type header interface {
	Get(key string) string
}

// readPart decodes one MIME entity into m, recursing into multipart bodies.
func readPart(m *message, h header, body io.Reader) error {
	contentType := h.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return readMultipart(m, body, params["boundary"])
	}

	data, err := io.ReadAll(decodeTransfer(h.Get("Content-Transfer-Encoding"), body))
	if err != nil {
		return err
	}

	if filename := attachmentName(h, params); filename != "" {
		m.attachments = append(m.attachments, attachment{filename: filename, data: data})
		return nil
	}

	switch mediaType {
	case "text/plain":
		m.plain = append(m.plain, string(data))
	case "text/html":
		m.html = append(m.html, stripHTML(string(data)))
	}
	return nil
}

func readMultipart(m *message, body io.Reader, boundary string) error {
	if boundary == "" {
		return nil
	}
	mr := multipart.NewReader(body, boundary)
	for {
		part, err := mr.NextRawPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		err = readPart(m, part.Header, part)
		part.Close()
		if err != nil {
			return err
		}
	}
}

// decodeTransfer undoes the Content-Transfer-Encoding of a part body.
func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// attachmentName returns the filename of an attachment part, or "" for inline content.
func attachmentName(h header, typeParams map[string]string) string {
	disposition, params, err := mime.ParseMediaType(h.Get("Content-Disposition"))
	if err == nil {
		if name := params["filename"]; name != "" {
			return decodeHeader(name)
		}
		if disposition != "attachment" {
			return ""
		}
	}
	return decodeHeader(typeParams["name"])
}

// writeHeaders writes the From, To, Date and Subject lines that are present.
func writeHeaders(sb *strings.Builder, h mail.Header) {
	for _, key := range []string{"From", "To", "Date", "Subject"} {
		if v := decodeHeader(h.Get(key)); v != "" {
			sb.WriteString(key)
			sb.WriteString(": ")
			sb.WriteString(v)
			sb.WriteString("\n")
		}
	}
}

// decodeHeader decodes RFC 2047 encoded words.
func decodeHeader(v string) string {
	if v == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(v)
	if err != nil {
		return v
	}
	return decoded
}
