package model

//go:generate go run github.com/dmarkham/enumer -type Role -trimprefix Role -transform lower -json -output role.gen.go

// Role is the coarse authorization level attached to a user.
// Stored in the users table as an integer.
type Role int

const (
	RoleViewer Role = iota
	RolePublisher
	RoleAdministrator
)

// CanPublish reports whether the role grants publish/manage rights.
func (r Role) CanPublish() bool {
	return r == RolePublisher || r == RoleAdministrator
}

// IsAdmin reports whether the role grants administrative rights.
func (r Role) IsAdmin() bool {
	return r == RoleAdministrator
}
