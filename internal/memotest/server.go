// Package memotest runs an in-process fake Memos server for exercising the
// client against realistic HTTP round trips. It implements just enough of
// the v1 API surface for the client tests: session auth, memo CRUD with a
// crude filter evaluator, attachment upload/download, and user lookup.
package memotest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Server is a fake Memos server. Exported fields configure behavior before
// requests arrive and capture observations for assertions afterwards.
type Server struct {
	*httptest.Server

	Token    string
	Username string
	Password string

	// FailLogout makes the session delete endpoint return 500.
	FailLogout bool

	mu            sync.Mutex
	memoSeq       int
	attachmentSeq int
	memos         map[string]map[string]any
	attachments   map[string]map[string]any
	files         map[string][]byte
	users         map[string]map[string]any

	LogoutCalls    int
	LastUpdateMask []string
	LastHeaders    http.Header
	LastThumbnail  bool
}

// NewServer starts a fake server with one user account ("users/1",
// username "alice") and the token "test-token" accepted on every
// authenticated route.
func NewServer() *Server {
	s := &Server{
		Token:       "test-token",
		Username:    "alice",
		Password:    "secret",
		memos:       map[string]map[string]any{},
		attachments: map[string]map[string]any{},
		files:       map[string][]byte{},
		users: map[string]map[string]any{
			"users/1": {
				"name":        "users/1",
				"username":    "alice",
				"email":       "alice@example.com",
				"nickname":    "Alice",
				"role":        "HOST",
				"create_time": time.Now().UTC().Format(time.RFC3339),
				"update_time": time.Now().UTC().Format(time.RFC3339),
			},
		},
	}

	r := chi.NewRouter()
	r.Post("/api/v1/auth/sessions", s.handleCreateSession)
	r.Get("/api/v1/auth/sessions/current", s.authed(s.handleCurrentSession))
	r.Delete("/api/v1/auth/sessions/current", s.authed(s.handleDeleteSession))

	r.Get("/api/v1/memos", s.authed(s.handleListMemos))
	r.Post("/api/v1/memos", s.authed(s.handleCreateMemo))
	r.Get("/api/v1/memos/{id}", s.authed(s.handleGetMemo))
	r.Patch("/api/v1/memos/{id}", s.authed(s.handleUpdateMemo))
	r.Delete("/api/v1/memos/{id}", s.authed(s.handleDeleteMemo))
	r.Patch("/api/v1/memos/{id}/attachments", s.authed(s.handleSetMemoAttachments))

	r.Post("/api/v1/attachments", s.authed(s.handleUploadAttachment))
	r.Get("/api/v1/attachments/{id}", s.authed(s.handleGetAttachment))
	r.Get("/file/attachments/{id}/{filename}", s.authed(s.handleDownloadAttachment))

	r.Get("/api/v1/users/{id}", s.authed(s.handleGetUser))

	s.Server = httptest.NewServer(r)
	return s
}

func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.LastHeaders = r.Header.Clone()
		s.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+s.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "unauthenticated"})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PasswordCredentials struct {
			Username string `json:"username"`
			Password string `json:"password"`
		} `json:"password_credentials"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "malformed request"})
		return
	}
	if body.PasswordCredentials.Username != s.Username || body.PasswordCredentials.Password != s.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "incorrect login credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": s.Token,
		"user":         s.users["users/1"],
	})
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"user": s.users["users/1"]})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.LogoutCalls++
	fail := s.FailLogout
	s.mu.Unlock()

	if fail {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "session store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

var tagPattern = regexp.MustCompile(`#([^\s#]+)`)

func (s *Server) handleCreateMemo(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Memo   map[string]any `json:"memo"`
		MemoID string         `json:"memo_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Memo == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "malformed request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.memoSeq++
	id := body.MemoID
	if id == "" {
		id = strconv.Itoa(s.memoSeq)
	}
	name := "memos/" + id

	content, _ := body.Memo["content"].(string)
	visibility, _ := body.Memo["visibility"].(string)
	if visibility == "" {
		visibility = "PRIVATE"
	}
	now := time.Now().UTC().Format(time.RFC3339)
	memo := map[string]any{
		"name":        name,
		"creator":     "users/1",
		"state":       "NORMAL",
		"content":     content,
		"snippet":     content,
		"visibility":  visibility,
		"pinned":      false,
		"tags":        extractTags(content),
		"create_time": now,
		"update_time": now,
	}
	if dt, ok := body.Memo["display_time"]; ok {
		memo["display_time"] = dt
	}
	if loc, ok := body.Memo["location"]; ok {
		memo["location"] = loc
	}

	s.memos[name] = memo
	writeJSON(w, http.StatusOK, memo)
}

func extractTags(content string) []any {
	tags := []any{}
	for _, m := range tagPattern.FindAllStringSubmatch(content, -1) {
		tags = append(tags, m[1])
	}
	return tags
}

func (s *Server) handleListMemos(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	state := r.URL.Query().Get("state")

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []map[string]any{}
	for _, memo := range s.memos {
		if state != "" && memo["state"] != state {
			continue
		}
		if matchesFilter(memo, filter) {
			matched = append(matched, memo)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"memos": matched})
}

var (
	containsPattern = regexp.MustCompile(`content\.contains\("([^"]*)"\)`)
	tagAnyPattern   = regexp.MustCompile(`tags\.any\("([^"]*)"\)`)
	creatorPattern  = regexp.MustCompile(`creator == "([^"]*)"`)
)

// matchesFilter evaluates the subset of the filter grammar the client
// emits: content.contains, ORed tags.any groups, and creator equality.
func matchesFilter(memo map[string]any, filter string) bool {
	if filter == "" {
		return true
	}
	for _, m := range containsPattern.FindAllStringSubmatch(filter, -1) {
		content, _ := memo["content"].(string)
		if !strings.Contains(content, m[1]) {
			return false
		}
	}
	if tagClauses := tagAnyPattern.FindAllStringSubmatch(filter, -1); len(tagClauses) > 0 {
		anyTag := false
		tags, _ := memo["tags"].([]any)
		for _, m := range tagClauses {
			for _, tag := range tags {
				if tag == m[1] {
					anyTag = true
				}
			}
		}
		if !anyTag {
			return false
		}
	}
	for _, m := range creatorPattern.FindAllStringSubmatch(filter, -1) {
		if memo["creator"] != m[1] {
			return false
		}
	}
	return true
}

func (s *Server) handleGetMemo(w http.ResponseWriter, r *http.Request) {
	name := "memos/" + chi.URLParam(r, "id")

	s.mu.Lock()
	memo, ok := s.memos[name]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "memo not found"})
		return
	}
	writeJSON(w, http.StatusOK, memo)
}

func (s *Server) handleUpdateMemo(w http.ResponseWriter, r *http.Request) {
	name := "memos/" + chi.URLParam(r, "id")

	var body struct {
		Memo       map[string]any `json:"memo"`
		UpdateMask struct {
			Paths []string `json:"paths"`
		} `json:"update_mask"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "malformed request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	memo, ok := s.memos[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "memo not found"})
		return
	}

	s.LastUpdateMask = body.UpdateMask.Paths
	for _, path := range body.UpdateMask.Paths {
		if v, ok := body.Memo[path]; ok {
			memo[path] = v
		}
	}
	if contains(body.UpdateMask.Paths, "content") {
		content, _ := memo["content"].(string)
		memo["tags"] = extractTags(content)
	}
	memo["update_time"] = time.Now().UTC().Format(time.RFC3339)
	writeJSON(w, http.StatusOK, memo)
}

func contains(paths []string, want string) bool {
	for _, p := range paths {
		if p == want {
			return true
		}
	}
	return false
}

func (s *Server) handleDeleteMemo(w http.ResponseWriter, r *http.Request) {
	name := "memos/" + chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.memos[name]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "memo not found"})
		return
	}
	delete(s.memos, name)
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleSetMemoAttachments(w http.ResponseWriter, r *http.Request) {
	name := "memos/" + chi.URLParam(r, "id")

	var body struct {
		Attachments []map[string]any `json:"attachments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "malformed request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	memo, ok := s.memos[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "memo not found"})
		return
	}
	memo["attachments"] = body.Attachments
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "malformed multipart body"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "missing file field"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "read failure"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.attachmentSeq++
	name := "attachments/" + strconv.Itoa(s.attachmentSeq)
	attachment := map[string]any{
		"name":        name,
		"filename":    header.Filename,
		"type":        header.Header.Get("Content-Type"),
		"size":        len(content),
		"create_time": time.Now().UTC().Format(time.RFC3339),
	}
	s.attachments[name] = attachment
	s.files[name] = content
	writeJSON(w, http.StatusOK, attachment)
}

func (s *Server) handleGetAttachment(w http.ResponseWriter, r *http.Request) {
	name := "attachments/" + chi.URLParam(r, "id")

	s.mu.Lock()
	attachment, ok := s.attachments[name]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "attachment not found"})
		return
	}
	writeJSON(w, http.StatusOK, attachment)
}

func (s *Server) handleDownloadAttachment(w http.ResponseWriter, r *http.Request) {
	name := "attachments/" + chi.URLParam(r, "id")

	s.mu.Lock()
	content, ok := s.files[name]
	s.LastThumbnail = r.URL.Query().Get("thumbnail") == "true"
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "attachment not found"})
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	name := "users/" + chi.URLParam(r, "id")

	s.mu.Lock()
	user, ok := s.users[name]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// MemoCount reports how many memos the server currently stores.
func (s *Server) MemoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.memos)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		fmt.Printf("memotest: encoding response: %v\n", err)
	}
}
