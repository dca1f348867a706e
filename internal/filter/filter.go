// Package filter narrows already-scoped result sets by the predicates a
// user supplies in the query string. Field names follow the dashboard
// form prefixes: m- for machines, mt- for maintenance, cl- for claims.
//
// A zero id means "any"; filters never add OR branches, so they can only
// narrow what the role scope allowed.
package filter

import (
	"strings"

	"gorm.io/gorm"

	"fleet-records-backend/internal/model"
	"fleet-records-backend/internal/serial"
)

// Machines filters the machines tab and the machine export.
type Machines struct {
	SerialQuick       string `form:"serial_quick" json:"serial_quick,omitempty" binding:"max=100"`
	Model             int64  `form:"m-model" json:"m-model,omitempty" binding:"omitempty,min=1"`
	EngineModel       int64  `form:"m-engine_model" json:"m-engine_model,omitempty" binding:"omitempty,min=1"`
	TransmissionModel int64  `form:"m-transmission_model" json:"m-transmission_model,omitempty" binding:"omitempty,min=1"`
	DriveAxleModel    int64  `form:"m-drive_axle_model" json:"m-drive_axle_model,omitempty" binding:"omitempty,min=1"`
	SteerAxleModel    int64  `form:"m-steer_axle_model" json:"m-steer_axle_model,omitempty" binding:"omitempty,min=1"`
}

// Apply adds the machine predicates to db.
func (f Machines) Apply(db *gorm.DB) *gorm.DB {
	if s := strings.TrimSpace(f.SerialQuick); s != "" {
		db = db.Where(`machines.serial_number LIKE ? ESCAPE '\'`, serial.LikePattern(s))
	}
	db = eq(db, "machines.model_id", f.Model)
	db = eq(db, "machines.engine_model_id", f.EngineModel)
	db = eq(db, "machines.transmission_model_id", f.TransmissionModel)
	db = eq(db, "machines.drive_axle_model_id", f.DriveAxleModel)
	db = eq(db, "machines.steer_axle_model_id", f.SteerAxleModel)
	return db
}

// Maintenance filters the maintenance tab.
type Maintenance struct {
	Type           int64  `form:"mt-type" json:"mt-type,omitempty" binding:"omitempty,min=1"`
	Serial         string `form:"mt-serial" json:"mt-serial,omitempty" binding:"max=100"`
	ServiceCompany int64  `form:"mt-service_company" json:"mt-service_company,omitempty" binding:"omitempty,min=1"`
}

// Apply adds the maintenance predicates to db.
func (f Maintenance) Apply(db *gorm.DB) *gorm.DB {
	db = eq(db, "maintenances.type_id", f.Type)
	if s := strings.TrimSpace(f.Serial); s != "" {
		db = db.Where("maintenances.machine_id IN (?)", serialMatches(db, s))
	}
	db = eq(db, "maintenances.service_company_id", f.ServiceCompany)
	return db
}

// Claims filters the claims tab.
type Claims struct {
	FailureNode    int64 `form:"cl-failure_node" json:"cl-failure_node,omitempty" binding:"omitempty,min=1"`
	RecoveryMethod int64 `form:"cl-recovery_method" json:"cl-recovery_method,omitempty" binding:"omitempty,min=1"`
	ServiceCompany int64 `form:"cl-service_company" json:"cl-service_company,omitempty" binding:"omitempty,min=1"`
}

// Apply adds the claim predicates to db.
func (f Claims) Apply(db *gorm.DB) *gorm.DB {
	db = eq(db, "claims.failure_node_id", f.FailureNode)
	db = eq(db, "claims.recovery_method_id", f.RecoveryMethod)
	db = eq(db, "claims.service_company_id", f.ServiceCompany)
	return db
}

// Paging is the requested page, 1-based. Zero means the first page.
type Paging struct {
	Page int `form:"page" json:"page,omitempty" binding:"omitempty,min=1,max=100000"`
}

// Number returns the effective page number.
func (p Paging) Number() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

// Tabs of the dashboard.
const (
	TabMachines    = "machines"
	TabMaintenance = "maintenance"
	TabClaims      = "claims"
)

// Dashboard is everything the dashboard query string may carry. All three
// filter groups are bound at once so switching tabs keeps them.
type Dashboard struct {
	Tab string `form:"tab" json:"tab,omitempty" binding:"omitempty,oneof=machines maintenance claims"`
	Machines
	Maintenance
	Claims
	Paging
}

// ActiveTab returns the selected tab, machines by default.
func (d Dashboard) ActiveTab() string {
	if d.Tab == "" {
		return TabMachines
	}
	return d.Tab
}

func eq(db *gorm.DB, column string, id int64) *gorm.DB {
	if id == 0 {
		return db
	}
	return db.Where(column+" = ?", id)
}

func serialMatches(db *gorm.DB, fragment string) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&model.Machine{}).
		Select("machines.id").
		Where(`machines.serial_number LIKE ? ESCAPE '\'`, serial.LikePattern(fragment))
}
