package model

import "time"

// Machine is a single unit shipped from the factory, keyed by its serial.
type Machine struct {
	ID           int64  `gorm:"primaryKey"`
	SerialNumber string `gorm:"uniqueIndex;size:100;not null"`

	ModelID int64        `gorm:"index;not null"`
	Model   MachineModel `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`

	EngineModelID *int64
	EngineModel   *EngineModel `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	EngineSerial  string       `gorm:"size:100;not null;default:''"`

	TransmissionModelID *int64
	TransmissionModel   *TransmissionModel `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	TransmissionSerial  string             `gorm:"size:100;not null;default:''"`

	DriveAxleModelID *int64
	DriveAxleModel   *DriveAxleModel `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	DriveAxleSerial  string          `gorm:"size:100;not null;default:''"`

	SteerAxleModelID *int64
	SteerAxleModel   *SteerAxleModel `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	SteerAxleSerial  string          `gorm:"size:100;not null;default:''"`

	ContractNumber   string     `gorm:"size:100;not null;default:''"`
	ContractDate     *time.Time `gorm:"type:date"`
	ShipmentDate     *time.Time `gorm:"type:date;index"`
	Consignee        string     `gorm:"size:300;not null;default:''"`
	OperationAddress string     `gorm:"size:500;not null;default:''"`
	Options          string     `gorm:"type:text;not null;default:''"`

	ClientID         *int64 `gorm:"index"`
	Client           *User  `gorm:"foreignKey:ClientID;constraint:OnDelete:SET NULL"`
	ServiceCompanyID *int64 `gorm:"index"`
	ServiceCompany   *User  `gorm:"foreignKey:ServiceCompanyID;constraint:OnDelete:SET NULL"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// MachineOrder is the default listing order.
const MachineOrder = "machines.shipment_date DESC, machines.serial_number ASC"
