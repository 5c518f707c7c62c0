package models

import "strings"

// Resource name prefixes. Every remote entity is addressed by a name of the
// form "{type-plural}/{id}".
const (
	MemoNamePrefix       = "memos/"
	UserNamePrefix       = "users/"
	AttachmentNamePrefix = "attachments/"
	ReactionNamePrefix   = "reactions/"
)

// QualifyMemoName turns a bare memo id into a full resource name. Names that
// already carry the prefix pass through unchanged.
func QualifyMemoName(id string) string {
	if strings.HasPrefix(id, MemoNamePrefix) {
		return id
	}
	return MemoNamePrefix + id
}

// QualifyUserName turns a bare user id into a full resource name.
func QualifyUserName(id string) string {
	if strings.HasPrefix(id, UserNamePrefix) {
		return id
	}
	return UserNamePrefix + id
}

// QualifyAttachmentName turns a bare attachment id into a full resource name.
func QualifyAttachmentName(id string) string {
	if strings.HasPrefix(id, AttachmentNamePrefix) {
		return id
	}
	return AttachmentNamePrefix + id
}

// extractID returns the part of a resource name after the first slash, or the
// name itself when it carries no prefix.
func extractID(name string) string {
	if _, id, ok := strings.Cut(name, "/"); ok {
		return id
	}
	return name
}
