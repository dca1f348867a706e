package model

import "time"

// Claim is a failure report (рекламация) raised against a machine.
type Claim struct {
	ID int64 `gorm:"primaryKey"`

	MachineID int64   `gorm:"index;not null"`
	Machine   Machine `gorm:"constraint:OnDelete:CASCADE"`

	FailureDate        time.Time   `gorm:"type:date;not null;index"`
	Hours              int         `gorm:"not null;default:0"`
	FailureNodeID      int64       `gorm:"index;not null"`
	FailureNode        FailureNode `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	FailureDescription string      `gorm:"type:text;not null;default:''"`

	RecoveryMethodID int64          `gorm:"index;not null"`
	RecoveryMethod   RecoveryMethod `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	PartsUsed        string         `gorm:"type:text;not null;default:''"`
	RecoveryDate     *time.Time     `gorm:"type:date"`

	ServiceCompanyID *int64 `gorm:"index"`
	ServiceCompany   *User  `gorm:"foreignKey:ServiceCompanyID;constraint:OnDelete:SET NULL"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Claim) TableName() string {
	return "claims"
}

// ClaimOrder is the default listing order.
const ClaimOrder = "claims.failure_date DESC, claims.id DESC"

// Downtime is the number of whole days between failure and recovery.
// It is nil until a recovery date is recorded.
func (c *Claim) Downtime() *int {
	if c.RecoveryDate == nil {
		return nil
	}
	days := int(civilDay(*c.RecoveryDate).Sub(civilDay(c.FailureDate)).Hours() / 24)
	return &days
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
