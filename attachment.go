package memos

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/usememos/memos.go/pkg/models"
)

const fallbackMIMEType = "application/octet-stream"

// UploadAttachmentOptions override the derived filename and MIME type.
type UploadAttachmentOptions struct {
	Filename string
	MIMEType string
}

// UploadAttachment uploads the file at path as a new attachment. The
// filename defaults to the path's base name and the MIME type is inferred
// from the extension.
func (c *Client) UploadAttachment(ctx context.Context, path string, opts UploadAttachmentOptions) (*models.Attachment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &NetworkError{Message: fmt.Sprintf("failed to read %s", path), Err: err}
	}
	if opts.Filename == "" {
		opts.Filename = filepath.Base(path)
	}
	return c.uploadAttachment(ctx, content, opts)
}

// UploadAttachmentFromReader uploads an attachment from an arbitrary byte
// source. When no filename is given, a source implementing Name (such as
// *os.File) provides one, otherwise "attachment" is used.
func (c *Client) UploadAttachmentFromReader(ctx context.Context, r io.Reader, opts UploadAttachmentOptions) (*models.Attachment, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, &NetworkError{Message: "failed to read attachment source", Err: err}
	}
	if opts.Filename == "" {
		if named, ok := r.(interface{ Name() string }); ok {
			opts.Filename = filepath.Base(named.Name())
		} else {
			opts.Filename = "attachment"
		}
	}
	return c.uploadAttachment(ctx, content, opts)
}

func (c *Client) uploadAttachment(ctx context.Context, content []byte, opts UploadAttachmentOptions) (*models.Attachment, error) {
	if opts.MIMEType == "" {
		opts.MIMEType = inferMIMEType(opts.Filename)
	}

	attachment := &models.Attachment{}
	err := c.do(ctx, http.MethodPost, "attachments", requestOptions{
		file: &filePayload{
			field:       "file",
			filename:    opts.Filename,
			contentType: opts.MIMEType,
			content:     content,
		},
	}, attachment)
	if err != nil {
		return nil, err
	}
	return attachment, nil
}

// inferMIMEType guesses a MIME type from the filename extension.
func inferMIMEType(filename string) string {
	mimeType := mime.TypeByExtension(filepath.Ext(filename))
	if mimeType == "" {
		return fallbackMIMEType
	}
	// TypeByExtension may append parameters such as charset.
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		return parsed
	}
	return mimeType
}

// GetAttachment fetches attachment metadata. Bare ids are qualified with
// the "attachments/" prefix.
func (c *Client) GetAttachment(ctx context.Context, attachmentID string) (*models.Attachment, error) {
	name := models.QualifyAttachmentName(attachmentID)

	attachment := &models.Attachment{}
	if err := c.do(ctx, http.MethodGet, name, requestOptions{}, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

// DownloadAttachment fetches the binary content of an attachment. Binary
// downloads use the server's file path, outside the versioned JSON API.
// With thumbnail set, image attachments are served scaled down.
func (c *Client) DownloadAttachment(ctx context.Context, attachmentName, filename string, thumbnail bool) ([]byte, error) {
	fullURL := fmt.Sprintf("%s/file/%s/%s", c.config.BaseURL, models.QualifyAttachmentName(attachmentName), filename)
	if thumbnail {
		fullURL += "?thumbnail=true"
	}
	return c.rawGet(ctx, fullURL)
}
