// Package scope computes the base result set each role is entitled to see.
// Scopes are applied before any user-supplied filter; filters only narrow.
package scope

import (
	"gorm.io/gorm"

	"fleet-records-backend/internal/access"
	"fleet-records-backend/internal/model"
)

// Scope is a gorm query scope, composable with db.Scopes(...).
type Scope func(*gorm.DB) *gorm.DB

func none(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

func all(db *gorm.DB) *gorm.DB {
	return db
}

// Machines restricts the machines table to what actor may see.
func Machines(actor access.Actor) Scope {
	if !actor.Authenticated() {
		return none
	}
	switch actor.Role {
	case access.RoleManager:
		return all
	case access.RoleClient:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("machines.client_id = ?", actor.UserID)
		}
	case access.RoleServiceCompany:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("machines.service_company_id = ?", actor.UserID)
		}
	default:
		return none
	}
}

// Maintenance restricts the maintenances table. A service company sees
// every record it performed, even on machines serviced by someone else.
func Maintenance(actor access.Actor) Scope {
	if !actor.Authenticated() {
		return none
	}
	switch actor.Role {
	case access.RoleManager:
		return all
	case access.RoleClient:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("maintenances.machine_id IN (?)", ownedMachineIDs(db, actor))
		}
	case access.RoleServiceCompany:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("(maintenances.organization_id = ? OR maintenances.service_company_id = ?)",
				actor.UserID, actor.UserID)
		}
	default:
		return none
	}
}

// Claims restricts the claims table.
func Claims(actor access.Actor) Scope {
	if !actor.Authenticated() {
		return none
	}
	switch actor.Role {
	case access.RoleManager:
		return all
	case access.RoleClient:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("claims.machine_id IN (?)", ownedMachineIDs(db, actor))
		}
	case access.RoleServiceCompany:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("claims.service_company_id = ?", actor.UserID)
		}
	default:
		return none
	}
}

func ownedMachineIDs(db *gorm.DB, actor access.Actor) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&model.Machine{}).
		Select("machines.id").
		Where("machines.client_id = ?", actor.UserID)
}
