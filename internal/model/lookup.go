package model

// Directory holds the columns shared by every reference table.
type Directory struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:200;not null" json:"name"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
}

// Label returns the name, or "" for an unset optional reference.
func (d *Directory) Label() string {
	if d == nil {
		return ""
	}
	return d.Name
}

type MachineModel struct{ Directory }

type EngineModel struct{ Directory }

type TransmissionModel struct{ Directory }

type DriveAxleModel struct{ Directory }

type SteerAxleModel struct{ Directory }

type MaintenanceType struct{ Directory }

type FailureNode struct{ Directory }

type RecoveryMethod struct{ Directory }
