package models

import (
	"fmt"
	"strings"
	"time"
)

// documentTypes are the MIME types classified as documents.
var documentTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"application/vnd.ms-powerpoint":                                     {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"text/plain":    {},
	"text/markdown": {},
	"text/csv":      {},
}

// Attachment is a file uploaded to the server, possibly bound to a memo.
type Attachment struct {
	Name       string    `json:"name" validate:"required,resname=attachments"`
	CreateTime time.Time `json:"create_time"`
	Filename   string    `json:"filename" validate:"required"`

	Type string `json:"type"`
	Size int64  `json:"size" validate:"gte=0"`

	ExternalLink string `json:"external_link,omitempty"`
	Memo         string `json:"memo,omitempty" validate:"omitempty,resname=memos"`
}

// Validate normalizes the filename and checks every invariant.
func (a *Attachment) Validate() error {
	a.Filename = strings.TrimSpace(a.Filename)
	return Validate(a)
}

// ID is the bare attachment id, the resource name without its prefix.
func (a *Attachment) ID() string {
	return extractID(a.Name)
}

// MemoID is the bare id of the owning memo, empty when unbound.
func (a *Attachment) MemoID() string {
	if a.Memo == "" {
		return ""
	}
	return extractID(a.Memo)
}

// IsImage reports whether the attachment is an image.
func (a *Attachment) IsImage() bool {
	return strings.HasPrefix(a.Type, "image/")
}

// IsVideo reports whether the attachment is a video.
func (a *Attachment) IsVideo() bool {
	return strings.HasPrefix(a.Type, "video/")
}

// IsAudio reports whether the attachment is audio.
func (a *Attachment) IsAudio() bool {
	return strings.HasPrefix(a.Type, "audio/")
}

// IsDocument reports whether the attachment is a known document type.
func (a *Attachment) IsDocument() bool {
	_, ok := documentTypes[a.Type]
	return ok
}

// Extension returns the lower-cased filename extension without the dot.
func (a *Attachment) Extension() string {
	if i := strings.LastIndex(a.Filename, "."); i >= 0 {
		return strings.ToLower(a.Filename[i+1:])
	}
	return ""
}

// FormatSize renders the byte size in a human-readable unit, e.g. "1.5 KB".
func (a *Attachment) FormatSize() string {
	size := float64(a.Size)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if size < 1024.0 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.1f PB", size)
}
