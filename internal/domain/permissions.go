package domain

// AuthLevel orders who may perform a board action, from most to least
// restrictive.
type AuthLevel int

const (
	LevelCreator       AuthLevel = 0
	LevelCollaborators AuthLevel = 1
	LevelRegistered    AuthLevel = 2
	LevelAnyone        AuthLevel = 3
)

// Permission names a board capability.
type Permission string

const (
	PermReadBoard    Permission = "read_board"
	PermReadComments Permission = "read_comments"
	PermAddComments  Permission = "add_comments"
	PermAddElements  Permission = "add_elements"
	PermEditElements Permission = "edit_elements"
	PermEditBoard    Permission = "edit_board"
)

// AllPermissions lists every board permission.
var AllPermissions = []Permission{
	PermReadBoard,
	PermReadComments,
	PermAddComments,
	PermAddElements,
	PermEditElements,
	PermEditBoard,
}

// ReadPermissions are the permissions an unauthenticated caller may hold.
var ReadPermissions = []Permission{PermReadBoard, PermReadComments}

// BoardPermissions is the per-board authorization scheme.
type BoardPermissions struct {
	BoardID      string
	ReadBoard    AuthLevel
	ReadComments AuthLevel
	AddComments  AuthLevel
	AddElements  AuthLevel
	EditElements AuthLevel
	EditBoard    AuthLevel

	CollaboratorIDs []string
	TeamIDs         []string
}

// DefaultBoardPermissions returns the scheme applied to newly created boards.
func DefaultBoardPermissions(boardID string) *BoardPermissions {
	return &BoardPermissions{
		BoardID:      boardID,
		ReadBoard:    LevelAnyone,
		ReadComments: LevelAnyone,
		AddComments:  LevelCollaborators,
		AddElements:  LevelCollaborators,
		EditElements: LevelCollaborators,
		EditBoard:    LevelCreator,
	}
}

// Level returns the configured level for a named permission.
func (p *BoardPermissions) Level(perm Permission) AuthLevel {
	switch perm {
	case PermReadBoard:
		return p.ReadBoard
	case PermReadComments:
		return p.ReadComments
	case PermAddComments:
		return p.AddComments
	case PermAddElements:
		return p.AddElements
	case PermEditElements:
		return p.EditElements
	case PermEditBoard:
		return p.EditBoard
	default:
		return LevelCreator
	}
}

// Validate checks that no permission is more permissive than the permission
// it depends on.
func (p *BoardPermissions) Validate() map[Permission]string {
	errs := make(map[Permission]string)
	if p.AddComments > p.ReadComments {
		errs[PermAddComments] = `cannot be more permissive than the "read comments" permission`
	}
	if p.EditElements > p.AddElements {
		errs[PermEditElements] = `cannot be more permissive than the "add elements" permission`
	}
	if p.ReadComments > p.ReadBoard {
		errs[PermReadComments] = `cannot be more permissive than the "read board" permission`
	}
	if p.AddElements > p.ReadBoard {
		errs[PermAddElements] = `cannot be more permissive than the "read board" permission`
	}
	if p.EditBoard > p.EditElements {
		errs[PermEditBoard] = `cannot be more permissive than the "edit elements" permission`
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// PermissionContext carries the caller's standing relative to a board.
type PermissionContext struct {
	Authenticated  bool
	IsStaff        bool
	IsCreator      bool
	IsCollaborator bool
}

// ForUser returns the set of permissions granted to the caller.
//
// Unauthenticated callers are limited to the read permissions regardless of
// the configured levels. Staff and the board creator hold everything their
// authentication state allows.
func (p *BoardPermissions) ForUser(ctx PermissionContext) map[Permission]bool {
	maxAllowed := AllPermissions
	if !ctx.Authenticated {
		maxAllowed = ReadPermissions
	}

	granted := make(map[Permission]bool, len(maxAllowed))
	if ctx.IsStaff || ctx.IsCreator {
		for _, perm := range maxAllowed {
			granted[perm] = true
		}
		return granted
	}

	for _, perm := range maxAllowed {
		level := p.Level(perm)
		switch {
		case level == LevelAnyone:
			granted[perm] = true
		case level == LevelRegistered && ctx.Authenticated:
			granted[perm] = true
		case level == LevelCollaborators && ctx.IsCollaborator:
			granted[perm] = true
		}
	}
	return granted
}

// Allows reports whether the caller holds the named permission.
func (p *BoardPermissions) Allows(ctx PermissionContext, perm Permission) bool {
	return p.ForUser(ctx)[perm]
}
