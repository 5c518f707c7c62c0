package models

import (
	"time"
)

// Visibility controls who can read a memo.
type Visibility string

const (
	VisibilityUnspecified Visibility = "VISIBILITY_UNSPECIFIED"
	VisibilityPrivate     Visibility = "PRIVATE"
	VisibilityProtected   Visibility = "PROTECTED"
	VisibilityPublic      Visibility = "PUBLIC"
)

// State is the lifecycle state of a memo.
type State string

const (
	StateUnspecified State = "STATE_UNSPECIFIED"
	StateNormal      State = "NORMAL"
	StateArchived    State = "ARCHIVED"
)

// Location is an optional geographic annotation on a memo.
type Location struct {
	Placeholder string   `json:"placeholder,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// NewLocation builds a validated Location. Nil coordinates are allowed;
// out-of-range ones are not.
func NewLocation(placeholder string, latitude, longitude *float64) (*Location, error) {
	loc := &Location{Placeholder: placeholder, Latitude: latitude, Longitude: longitude}
	if err := Validate(loc); err != nil {
		return nil, err
	}
	return loc, nil
}

// Validate checks coordinate ranges.
func (l *Location) Validate() error {
	return Validate(l)
}

// MemoProperty is the server-computed property bundle of a memo.
type MemoProperty struct {
	HasLink            bool `json:"has_link,omitempty"`
	HasTaskList        bool `json:"has_task_list,omitempty"`
	HasCode            bool `json:"has_code,omitempty"`
	HasIncompleteTasks bool `json:"has_incomplete_tasks,omitempty"`
}

// MemoRelationType classifies a relation between two memos.
type MemoRelationType string

const (
	MemoRelationUnspecified MemoRelationType = "TYPE_UNSPECIFIED"
	MemoRelationReference   MemoRelationType = "REFERENCE"
	MemoRelationComment     MemoRelationType = "COMMENT"
)

// MemoReference points at a memo from a relation entry.
type MemoReference struct {
	Name    string `json:"name" validate:"required,resname=memos"`
	Snippet string `json:"snippet,omitempty"`
}

// MemoRelation links two memos together.
type MemoRelation struct {
	Memo        MemoReference    `json:"memo"`
	RelatedMemo MemoReference    `json:"related_memo"`
	Type        MemoRelationType `json:"type"`
}

// Reaction is an emoji reaction attached to a memo.
type Reaction struct {
	Name         string    `json:"name" validate:"required,resname=reactions"`
	Creator      string    `json:"creator" validate:"required,resname=users"`
	ContentID    string    `json:"content_id" validate:"required,resname=memos"`
	ReactionType string    `json:"reaction_type"`
	CreateTime   time.Time `json:"create_time"`
}

// Memo is a markdown note as stored by the server. Instances are built from
// server responses and never mutated; update operations return fresh ones.
type Memo struct {
	Name    string `json:"name" validate:"required,resname=memos"`
	State   State  `json:"state,omitempty"`
	Creator string `json:"creator" validate:"required,resname=users"`

	CreateTime  time.Time  `json:"create_time"`
	UpdateTime  time.Time  `json:"update_time"`
	DisplayTime *time.Time `json:"display_time,omitempty"`

	Content string `json:"content"`
	Snippet string `json:"snippet,omitempty"`

	Visibility Visibility `json:"visibility,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Pinned     bool       `json:"pinned,omitempty"`

	Attachments []Attachment   `json:"attachments,omitempty" validate:"dive"`
	Relations   []MemoRelation `json:"relations,omitempty" validate:"dive"`
	Reactions   []Reaction     `json:"reactions,omitempty" validate:"dive"`

	Parent   string        `json:"parent,omitempty" validate:"omitempty,resname=memos"`
	Location *Location     `json:"location,omitempty"`
	Property *MemoProperty `json:"property,omitempty"`
}

// Validate applies wire defaults and checks every invariant, including the
// nested attachments, relations and reactions.
func (m *Memo) Validate() error {
	if m.State == "" {
		m.State = StateNormal
	}
	if m.Visibility == "" {
		m.Visibility = VisibilityPrivate
	}
	return Validate(m)
}

// ID is the bare memo id, the resource name without its prefix.
func (m *Memo) ID() string {
	return extractID(m.Name)
}

// CreatorID is the bare id of the creating user.
func (m *Memo) CreatorID() string {
	return extractID(m.Creator)
}

// ParentID is the bare id of the parent memo, empty when there is none.
func (m *Memo) ParentID() string {
	if m.Parent == "" {
		return ""
	}
	return extractID(m.Parent)
}
