// Package mail opens report emails and extracts the parts downstream
// stages need: the subject, both body renderings, and any image
// attachments written out as temp files.
package mail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jhillyerd/enmime/v2"
)

// Message is the pipeline's view of one report email.
type Message struct {
	Subject    string
	HTMLBody   string
	TextBody   string
	ImagePaths []string // temp-file paths of extracted image attachments
}

// Reader opens an email file into a Message. The shipped implementation
// reads MIME containers only: a binary OLE-compound Outlook .msg is not
// parseable and returns an error, which the document path reports as a
// structured per-file failure.
type Reader interface {
	Read(ctx context.Context, path string) (*Message, error)
}

// MIMEReader parses RFC 822 / MIME email files (.eml, and .msg saved in
// MIME form).
type MIMEReader struct {
	// TempDir receives extracted attachments; defaults to os.TempDir().
	TempDir string
}

var _ Reader = (*MIMEReader)(nil)

func (r *MIMEReader) Read(ctx context.Context, path string) (*Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open email %s: %w", path, err)
	}
	defer f.Close()

	env, err := enmime.ReadEnvelope(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email %s: %w", path, err)
	}

	msg := &Message{
		Subject:  env.GetHeader("Subject"),
		HTMLBody: env.HTML,
		TextBody: env.Text,
	}

	dir := r.TempDir
	if dir == "" {
		dir = os.TempDir()
	}

	// Report table images arrive both as real attachments and as inline
	// parts referenced from the HTML body.
	for _, part := range append(append([]*enmime.Part{}, env.Attachments...), env.Inlines...) {
		name := sanitizeFilename(part.FileName)
		if !isImageName(name, part.ContentType) {
			continue
		}
		if name == "" {
			name = "attachment_" + uuid.New().String() + extFromContentType(part.ContentType)
		}
		dst := filepath.Join(dir, name)
		if err := os.WriteFile(dst, part.Content, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write attachment %s: %w", name, err)
		}
		msg.ImagePaths = append(msg.ImagePaths, dst)
	}

	return msg, nil
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\x00", "")
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

func isImageName(name, contentType string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}

func extFromContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	default:
		return ".png"
	}
}
