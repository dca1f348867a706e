// Package access decides what an authenticated actor may do with machines,
// maintenance records and claims. Every check is a pure function of the
// actor, the action and the already-loaded target; nothing here touches the
// database.
package access

import "fleet-records-backend/internal/model"

// Role is the single operative role of an actor, derived once when the
// request is authenticated.
type Role int

const (
	RoleNone Role = iota
	RoleManager
	RoleClient
	RoleServiceCompany
)

// ParseRole maps the stored users.role value onto a Role. Unknown values
// grant nothing.
func ParseRole(s string) Role {
	switch s {
	case model.RoleManager:
		return RoleManager
	case model.RoleClient:
		return RoleClient
	case model.RoleServiceCompany:
		return RoleServiceCompany
	default:
		return RoleNone
	}
}

func (r Role) String() string {
	switch r {
	case RoleManager:
		return model.RoleManager
	case RoleClient:
		return model.RoleClient
	case RoleServiceCompany:
		return model.RoleServiceCompany
	default:
		return "none"
	}
}

// Action is what the actor is trying to do with a target.
type Action int

const (
	View Action = iota
	Create
	Edit
	Delete
)

func (a Action) String() string {
	switch a {
	case View:
		return "view"
	case Create:
		return "create"
	case Edit:
		return "edit"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// Actor is the authenticated identity passed explicitly into scoping and
// policy checks.
type Actor struct {
	UserID int64
	Email  string
	Role   Role
}

// ActorFor builds the actor for a loaded user.
func ActorFor(u *model.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{UserID: u.ID, Email: u.Email, Role: ParseRole(u.Role)}
}

// Authenticated reports whether the actor carries an identity at all.
func (a Actor) Authenticated() bool {
	return a.UserID != 0
}

// is reports whether a nullable user reference points at the actor.
func (a Actor) is(id *int64) bool {
	return a.UserID != 0 && id != nil && *id == a.UserID
}
