package models

// Role is a member's persisted role inside a circle.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Circle represents a group that shares a general fund and a list of events.
type Circle struct {
	// ID is the 6-digit join code (e.g. "482913").
	ID string

	// Name is the display name; admins may rename it.
	Name string

	// CreatedBy is the identity id of the creator, who becomes the first admin.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the circle was created.
	CreatedAt int64
}

// Member binds an identity to a circle.
// Membership is append-only: members are never removed.
type Member struct {
	CircleID string

	// UserID is the identity id of the member.
	UserID string

	// DisplayName is the name shown in payment lists and snapshotted into transactions.
	DisplayName string

	Role Role

	// JoinedAt is the Unix timestamp when the member joined. Members are listed in join order.
	JoinedAt int64
}

// IsAdmin reports whether the member holds the admin role.
func (m *Member) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}
