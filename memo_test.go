package memos_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	memos "github.com/usememos/memos.go"
	"github.com/usememos/memos.go/internal/memotest"
	"github.com/usememos/memos.go/pkg/models"
)

func setup(t *testing.T) (*memotest.Server, *memos.Client) {
	t.Helper()
	srv := memotest.NewServer()
	t.Cleanup(srv.Close)

	client, err := memos.NewClient(srv.URL, memos.WithAccessToken(srv.Token))
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return srv, client
}

func TestCreateMemoEmbedsTags(t *testing.T) {
	_, client := setup(t)

	memo, err := client.CreateMemo(context.Background(), "hello", memos.CreateMemoOptions{
		Tags: []string{"a", "b"},
	})
	require.NoError(t, err)

	lines := strings.Split(memo.Content, "\n")
	assert.Equal(t, "#a #b", lines[len(lines)-1])
	assert.ElementsMatch(t, []string{"a", "b"}, memo.Tags)
	assert.Equal(t, models.VisibilityPrivate, memo.Visibility)
}

func TestSearchMemosByTag(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()

	created, err := client.CreateMemo(ctx, "hello", memos.CreateMemoOptions{Tags: []string{"a", "b"}})
	require.NoError(t, err)
	_, err = client.CreateMemo(ctx, "unrelated", memos.CreateMemoOptions{})
	require.NoError(t, err)

	found, err := client.SearchMemos(ctx, memos.SearchMemosOptions{Tags: []string{"a"}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created.Name, found[0].Name)

	none, err := client.SearchMemos(ctx, memos.SearchMemosOptions{Tags: []string{"missing"}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchMemosByQuery(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()

	_, err := client.CreateMemo(ctx, "grocery list", memos.CreateMemoOptions{})
	require.NoError(t, err)

	found, err := client.SearchMemos(ctx, memos.SearchMemosOptions{Query: "grocery"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Contains(t, found[0].Content, "grocery")
}

func TestGetMemoNormalizesID(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()

	created, err := client.CreateMemo(ctx, "hello", memos.CreateMemoOptions{})
	require.NoError(t, err)

	byBareID, err := client.GetMemo(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, created.Name, byBareID.Name)

	byName, err := client.GetMemo(ctx, created.Name)
	require.NoError(t, err)
	assert.Equal(t, created.Name, byName.Name)
}

func TestUpdateMemoFieldMask(t *testing.T) {
	srv, client := setup(t)
	ctx := context.Background()

	created, err := client.CreateMemo(ctx, "hello", memos.CreateMemoOptions{})
	require.NoError(t, err)

	pinned := true
	updated, err := client.UpdateMemo(ctx, created.ID(), memos.UpdateMemoOptions{Pinned: &pinned})
	require.NoError(t, err)

	assert.Equal(t, []string{"pinned"}, srv.LastUpdateMask)
	assert.True(t, updated.Pinned)
	// Fields outside the mask stay untouched.
	assert.Equal(t, created.Content, updated.Content)
}

func TestUpdateMemoContentWithTags(t *testing.T) {
	srv, client := setup(t)
	ctx := context.Background()

	created, err := client.CreateMemo(ctx, "hello", memos.CreateMemoOptions{})
	require.NoError(t, err)

	content := "rewritten"
	visibility := models.VisibilityPublic
	updated, err := client.UpdateMemo(ctx, created.ID(), memos.UpdateMemoOptions{
		Content:    &content,
		Tags:       []string{"x"},
		Visibility: &visibility,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"content", "visibility"}, srv.LastUpdateMask)
	assert.True(t, strings.HasSuffix(updated.Content, "#x"))
	assert.Equal(t, models.VisibilityPublic, updated.Visibility)
}

func TestDeleteMemo(t *testing.T) {
	srv, client := setup(t)
	ctx := context.Background()

	created, err := client.CreateMemo(ctx, "hello", memos.CreateMemoOptions{})
	require.NoError(t, err)

	require.NoError(t, client.DeleteMemo(ctx, created.ID()))
	assert.Equal(t, 0, srv.MemoCount())

	_, err = client.GetMemo(ctx, created.ID())
	var notFound *memos.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestCreateMemoWithAttachments(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()

	attachment, err := client.UploadAttachmentFromReader(ctx, bytes.NewReader([]byte("data")),
		memos.UploadAttachmentOptions{Filename: "a.txt"})
	require.NoError(t, err)

	memo, err := client.CreateMemo(ctx, "with file", memos.CreateMemoOptions{
		Attachments: []string{attachment.Name},
	})
	require.NoError(t, err)

	// The returned memo reflects the association via the re-fetch.
	require.Len(t, memo.Attachments, 1)
	assert.Equal(t, attachment.Name, memo.Attachments[0].Name)
}

func TestSetMemoAttachmentsValidatesExistence(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()

	created, err := client.CreateMemo(ctx, "hello", memos.CreateMemoOptions{})
	require.NoError(t, err)

	err = client.SetMemoAttachments(ctx, created.ID(), []string{"attachments/999"})
	var notFound *memos.NotFoundError
	require.ErrorAs(t, err, &notFound)

	// The memo is untouched when an attachment is dangling.
	fetched, err := client.GetMemo(ctx, created.ID())
	require.NoError(t, err)
	assert.Empty(t, fetched.Attachments)
}

func TestCreateMemoDisplayTimeAndLocation(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()

	lat, lon := 52.52, 13.405
	location, err := models.NewLocation("Berlin", &lat, &lon)
	require.NoError(t, err)

	displayTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	memo, err := client.CreateMemo(ctx, "travel note", memos.CreateMemoOptions{
		DisplayTime: &displayTime,
		Location:    location,
	})
	require.NoError(t, err)

	require.NotNil(t, memo.DisplayTime)
	assert.True(t, memo.DisplayTime.Equal(displayTime))
	require.NotNil(t, memo.Location)
	assert.Equal(t, "Berlin", memo.Location.Placeholder)
}

func TestCreateMemoRejectsBadLocation(t *testing.T) {
	_, client := setup(t)

	badLat := 120.0
	_, err := client.CreateMemo(context.Background(), "x", memos.CreateMemoOptions{
		Location: &models.Location{Latitude: &badLat},
	})
	var validation *memos.ValidationError
	require.ErrorAs(t, err, &validation)
}
