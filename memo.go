package memos

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/usememos/memos.go/pkg/models"
)

// tagLine renders tags as trailing markdown tag markup, e.g. "#a #b".
func tagLine(tags []string) string {
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		parts = append(parts, "#"+tag)
	}
	return strings.Join(parts, " ")
}

// memoList is the search response envelope.
type memoList struct {
	Memos []models.Memo `json:"memos"`
}

func (l *memoList) Validate() error {
	for i := range l.Memos {
		if err := l.Memos[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SearchMemos lists memos matching the given filters.
func (c *Client) SearchMemos(ctx context.Context, opts SearchMemosOptions) ([]models.Memo, error) {
	if opts.State == "" {
		opts.State = models.StateNormal
	}
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.OrderBy == "" {
		opts.OrderBy = "display_time desc"
	}

	params := url.Values{}
	params.Set("page_size", strconv.Itoa(opts.Limit))
	params.Set("state", string(opts.State))
	params.Set("order_by", opts.OrderBy)
	if filter := opts.filter(); filter != "" {
		params.Set("filter", filter)
	}

	var list memoList
	if err := c.do(ctx, http.MethodGet, "memos", requestOptions{params: params}, &list); err != nil {
		return nil, err
	}
	return list.Memos, nil
}

// GetMemo fetches one memo. Bare ids are qualified with the "memos/" prefix.
func (c *Client) GetMemo(ctx context.Context, memoID string) (*models.Memo, error) {
	name := models.QualifyMemoName(memoID)

	memo := &models.Memo{}
	if err := c.do(ctx, http.MethodGet, name, requestOptions{}, memo); err != nil {
		return nil, err
	}
	return memo, nil
}

// CreateMemoOptions are the optional parts of a new memo.
type CreateMemoOptions struct {
	Visibility models.Visibility
	// Tags are embedded in the content as a trailing tag line.
	Tags []string
	// Attachments are attachment resource names associated after creation.
	Attachments []string
	Location    *models.Location
	DisplayTime *time.Time
	// MemoID requests a specific id instead of a server-generated one.
	MemoID string
}

// CreateMemo creates a memo with the given markdown content. When
// attachment names are supplied they are associated in a second call and
// the memo is re-fetched so the result reflects them.
func (c *Client) CreateMemo(ctx context.Context, content string, opts CreateMemoOptions) (*models.Memo, error) {
	if opts.Visibility == "" {
		opts.Visibility = models.VisibilityPrivate
	}

	memoContent := content
	if len(opts.Tags) > 0 {
		memoContent = content + "\n\n" + tagLine(opts.Tags)
	}

	memoData := map[string]any{
		"content":    memoContent,
		"visibility": string(opts.Visibility),
	}
	if opts.DisplayTime != nil {
		memoData["display_time"] = opts.DisplayTime.Format(time.RFC3339)
	}
	if opts.Location != nil {
		if err := opts.Location.Validate(); err != nil {
			return nil, &ValidationError{APIError{Message: err.Error()}}
		}
		memoData["location"] = opts.Location
	}

	body := map[string]any{"memo": memoData}
	if opts.MemoID != "" {
		body["memo_id"] = opts.MemoID
	}

	memo := &models.Memo{}
	if err := c.do(ctx, http.MethodPost, "memos", requestOptions{body: body}, memo); err != nil {
		return nil, err
	}

	if len(opts.Attachments) > 0 {
		if err := c.SetMemoAttachments(ctx, memo.Name, opts.Attachments); err != nil {
			return nil, err
		}
		return c.GetMemo(ctx, memo.Name)
	}
	return memo, nil
}

// UpdateMemoOptions names the fields a partial update changes. Only set
// fields end up in the request and in its field mask; the server leaves
// everything else untouched.
type UpdateMemoOptions struct {
	Content *string
	// Tags are appended to Content as a trailing tag line. Ignored unless
	// Content is also set.
	Tags        []string
	Visibility  *models.Visibility
	Location    *models.Location
	DisplayTime *time.Time
	Pinned      *bool
}

// UpdateMemo applies a partial update and returns the fresh memo.
func (c *Client) UpdateMemo(ctx context.Context, memoID string, opts UpdateMemoOptions) (*models.Memo, error) {
	name := models.QualifyMemoName(memoID)

	memoData := map[string]any{"name": name}
	var paths []string

	if opts.Content != nil {
		content := *opts.Content
		if len(opts.Tags) > 0 {
			content = content + "\n\n" + tagLine(opts.Tags)
		}
		memoData["content"] = content
		paths = append(paths, "content")
	}
	if opts.Visibility != nil {
		memoData["visibility"] = string(*opts.Visibility)
		paths = append(paths, "visibility")
	}
	if opts.Location != nil {
		if err := opts.Location.Validate(); err != nil {
			return nil, &ValidationError{APIError{Message: err.Error()}}
		}
		memoData["location"] = opts.Location
		paths = append(paths, "location")
	}
	if opts.DisplayTime != nil {
		memoData["display_time"] = opts.DisplayTime.Format(time.RFC3339)
		paths = append(paths, "display_time")
	}
	if opts.Pinned != nil {
		memoData["pinned"] = *opts.Pinned
		paths = append(paths, "pinned")
	}

	body := map[string]any{
		"memo":        memoData,
		"update_mask": map[string]any{"paths": paths},
	}

	memo := &models.Memo{}
	if err := c.do(ctx, http.MethodPatch, name, requestOptions{body: body}, memo); err != nil {
		return nil, err
	}
	return memo, nil
}

// DeleteMemo deletes a memo. Bare ids are qualified first.
func (c *Client) DeleteMemo(ctx context.Context, memoID string) error {
	name := models.QualifyMemoName(memoID)
	return c.do(ctx, http.MethodDelete, name, requestOptions{}, nil)
}

// SetMemoAttachments replaces the attachment set of a memo. Each attachment
// is fetched first so a dangling name fails before the memo is touched.
func (c *Client) SetMemoAttachments(ctx context.Context, memoID string, attachmentNames []string) error {
	name := models.QualifyMemoName(memoID)

	attachments := make([]models.Attachment, 0, len(attachmentNames))
	for _, attachmentName := range attachmentNames {
		attachment, err := c.GetAttachment(ctx, attachmentName)
		if err != nil {
			return err
		}
		attachments = append(attachments, *attachment)
	}

	body := map[string]any{"attachments": attachments}
	return c.do(ctx, http.MethodPatch, name+"/attachments", requestOptions{body: body}, nil)
}
