package store

// Roles supplied by the identity collaborator.  The core treats them as
// opaque capability tags; librarian and admin gate the administrative
// operations.
const (
	RoleGuest     = "guest"
	RoleStudent   = "student"
	RoleLibrarian = "librarian"
	RoleAdmin     = "admin"
)

// Actor identifies the caller of a store operation.  Background tasks
// use System().
type Actor struct {
	UserID uint64
	Role   string
}

// Elevated reports whether the actor may perform administrative
// operations: manual checkout, appeal review and seat administration.
func (a Actor) Elevated() bool {
	return a.Role == RoleLibrarian || a.Role == RoleAdmin
}

// System returns the actor used by the occupancy monitor and other
// internal tasks.  It is elevated and owns nothing.
func System() Actor {
	return Actor{UserID: 0, Role: RoleAdmin}
}
