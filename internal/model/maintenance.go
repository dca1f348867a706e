package model

import "time"

// Maintenance is one service event (ТО) performed on a machine.
type Maintenance struct {
	ID int64 `gorm:"primaryKey"`

	MachineID int64   `gorm:"index;not null"`
	Machine   Machine `gorm:"constraint:OnDelete:CASCADE"`

	TypeID int64           `gorm:"index;not null"`
	Type   MaintenanceType `gorm:"foreignKey:TypeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`

	Date        time.Time  `gorm:"type:date;not null;index"`
	Hours       int        `gorm:"not null;default:0"`
	OrderNumber string     `gorm:"size:100;not null;default:''"`
	OrderDate   *time.Time `gorm:"type:date"`

	OrganizationID   *int64 `gorm:"index"`
	Organization     *User  `gorm:"foreignKey:OrganizationID;constraint:OnDelete:SET NULL"`
	ServiceCompanyID *int64 `gorm:"index"`
	ServiceCompany   *User  `gorm:"foreignKey:ServiceCompanyID;constraint:OnDelete:SET NULL"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Maintenance) TableName() string {
	return "maintenances"
}

// MaintenanceOrder is the default listing order.
const MaintenanceOrder = "maintenances.date DESC, maintenances.id DESC"
