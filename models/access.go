package models

// Access is a user's standing on a workspace or project.
type Access struct {
	Exists bool
	Owner  bool
	// Role is the user's membership role, nil without a membership row.
	Role *Role
	// ViaWorkspace is set when the user belongs to the project's workspace.
	ViaWorkspace bool
}

// CanRead reports owner, member or parent-workspace member.
func (a Access) CanRead() bool {
	return a.Exists && (a.Owner || a.Role != nil || a.ViaWorkspace)
}

// IsAdmin reports owner or admin membership.
func (a Access) IsAdmin() bool {
	return a.Exists && (a.Owner || (a.Role != nil && *a.Role == RoleAdmin))
}
