package memos

import (
	"fmt"
	"strings"

	"github.com/usememos/memos.go/pkg/models"
)

// SearchMemosOptions narrows a memo search. The zero value lists normal
// memos ordered by display time.
type SearchMemosOptions struct {
	// Query matches against memo content.
	Query string
	// Tags filter; multiple tags are ORed together, then ANDed with the
	// other clauses.
	Tags []string
	// Creator is a user id or full resource name.
	Creator    string
	Visibility models.Visibility
	// State defaults to normal.
	State models.State
	// Limit caps the page size. Defaults to 50.
	Limit int
	// Offset is accepted but currently ignored: the server paginates with
	// page tokens, which this client does not implement yet.
	Offset int
	// OrderBy defaults to "display_time desc".
	OrderBy string
}

// filter builds the server-side filter expression from the set clauses.
func (o SearchMemosOptions) filter() string {
	var clauses []string

	if o.Query != "" {
		clauses = append(clauses, fmt.Sprintf("content.contains(%q)", o.Query))
	}

	if len(o.Tags) > 0 {
		tagClauses := make([]string, 0, len(o.Tags))
		for _, tag := range o.Tags {
			tagClauses = append(tagClauses, fmt.Sprintf("tags.any(%q)", tag))
		}
		clauses = append(clauses, "("+strings.Join(tagClauses, " || ")+")")
	}

	if o.Creator != "" {
		clauses = append(clauses, fmt.Sprintf("creator == %q", models.QualifyUserName(o.Creator)))
	}

	if o.Visibility != "" {
		clauses = append(clauses, fmt.Sprintf("visibility == %q", string(o.Visibility)))
	}

	return strings.Join(clauses, " && ")
}
