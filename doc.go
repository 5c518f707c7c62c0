// Package memos is a Go client for the Memos note-taking server's REST API.
//
// The client wraps every remote operation in a single authenticated HTTP
// round trip: memo search and CRUD, attachment upload and download, and
// user lookup, with JSON responses mapped onto the validated models in
// [github.com/usememos/memos.go/pkg/models].
//
// # Authentication
//
// Two methods are supported. A static access token is attached as a bearer
// Authorization header without any network call:
//
//	client, err := memos.NewClient("https://memos.example.com",
//		memos.WithAccessToken(token))
//
// Alternatively a username/password pair establishes a server session on
// first use; the session is held for two weeks and re-established from the
// stored credentials when it expires:
//
//	client, err := memos.NewClient("https://memos.example.com",
//		memos.WithCredentials("alice", "secret"))
//
// When both are supplied the token wins and the credentials are discarded.
//
// # Errors
//
// Non-success responses map onto a typed taxonomy carrying the status code
// and the decoded response body: [AuthenticationError], [NotFoundError],
// [ValidationError], [RateLimitError], [ServerError], and [APIError] as the
// fallback. Transport failures surface as [NetworkError] wrapping the
// underlying cause. Use errors.As to branch on the kind:
//
//	memo, err := client.GetMemo(ctx, "abc123")
//	var notFound *memos.NotFoundError
//	if errors.As(err, &notFound) {
//		// handle the missing memo
//	}
//
// # Usage
//
//	memo, err := client.CreateMemo(ctx, "hello", memos.CreateMemoOptions{
//		Tags:       []string{"inbox"},
//		Visibility: models.VisibilityPrivate,
//	})
//	if err != nil {
//		return err
//	}
//	results, err := client.SearchMemos(ctx, memos.SearchMemosOptions{
//		Tags: []string{"inbox"},
//	})
//
// The underlying transport is created lazily on the first call and released
// with [Client.Close]. A single client is safe for concurrent use.
package memos
