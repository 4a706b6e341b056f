// Package authz decides which mutations a requester may apply to an existing post.
//
// The rules are two-axis: the requester's role and whether the requester owns
// the post. Callers resolve the requester themselves and pass it in; nothing
// here reads ambient request state.
package authz

import "blog/internal/models"

// Requester is the resolved identity behind an authenticated request.
type Requester struct {
	ID       string
	Username string
	Role     models.Role
}

// IsAdmin reports whether the requester holds the admin role.
func (r Requester) IsAdmin() bool {
	return r.Role.IsAdmin()
}

// Owns reports whether the requester is the owner of p.
func (r Requester) Owns(p *models.Post) bool {
	return p != nil && r.ID != "" && r.ID == p.OwnerID
}

// UpdateDecision is the outcome of an update authorization check.
type UpdateDecision int

const (
	// Deny rejects the update.
	Deny UpdateDecision = iota
	// TopicOnly lets the requester move the post to another topic and nothing else.
	TopicOnly
	// FullReplace lets the requester replace title, body and topic.
	FullReplace
)

func (d UpdateDecision) String() string {
	switch d {
	case TopicOnly:
		return "topic_only"
	case FullReplace:
		return "full_replace"
	default:
		return "deny"
	}
}

// DecideUpdate applies the update table:
//
//	ADMIN, owner     -> FullReplace
//	ADMIN, not owner -> TopicOnly
//	USER,  owner     -> FullReplace
//	USER,  not owner -> Deny
func DecideUpdate(r Requester, existing *models.Post) UpdateDecision {
	if r.Owns(existing) {
		return FullReplace
	}
	if r.IsAdmin() {
		return TopicOnly
	}
	return Deny
}

// CanDelete reports whether r may remove existing.
func CanDelete(r Requester, existing *models.Post) bool {
	return r.IsAdmin() || r.Owns(existing)
}

// ApplyUpdate returns the post that results from applying proposed onto existing
// under decision d. The owner always stays the existing owner; ID and CreatedAt
// are never taken from the proposal. A Deny decision returns existing unchanged.
func ApplyUpdate(d UpdateDecision, existing models.Post, proposed models.Post) models.Post {
	next := existing
	switch d {
	case FullReplace:
		next.Title = proposed.Title
		next.Body = proposed.Body
		next.TopicID = proposed.TopicID
		next.Topic = proposed.Topic
	case TopicOnly:
		next.TopicID = proposed.TopicID
		next.Topic = proposed.Topic
	}
	next.OwnerID = existing.OwnerID
	next.Owner = existing.Owner
	return next
}
