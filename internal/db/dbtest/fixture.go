package dbtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fleet-records-backend/internal/model"
)

// Lookups holds one row of every reference table.
type Lookups struct {
	Model           model.MachineModel
	Engine          model.EngineModel
	Transmission    model.TransmissionModel
	DriveAxle       model.DriveAxleModel
	SteerAxle       model.SteerAxleModel
	MaintenanceType model.MaintenanceType
	FailureNode     model.FailureNode
	RecoveryMethod  model.RecoveryMethod
}

// SeedLookups inserts one row into each reference table.
func SeedLookups(t testing.TB, gdb *gorm.DB) *Lookups {
	t.Helper()
	l := &Lookups{}
	l.Model.Name = "PD5"
	l.Engine.Name = "D-240"
	l.Transmission.Name = "10VB-00"
	l.DriveAxle.Name = "20VB-1"
	l.SteerAxle.Name = "VS-30"
	l.MaintenanceType.Name = "TO-1"
	l.FailureNode.Name = "Engine"
	l.RecoveryMethod.Name = "Part replacement"
	for _, row := range []any{&l.Model, &l.Engine, &l.Transmission, &l.DriveAxle,
		&l.SteerAxle, &l.MaintenanceType, &l.FailureNode, &l.RecoveryMethod} {
		require.NoError(t, gdb.Create(row).Error)
	}
	return l
}

// User inserts a user with the given role and no usable password.
func User(t testing.TB, gdb *gorm.DB, email, role string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Role: role, PasswordHash: "-"}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

// Machine inserts a machine linked to the given client and service company
// (either may be nil).
func Machine(t testing.TB, gdb *gorm.DB, l *Lookups, serialNumber string, client, service *model.User) *model.Machine {
	t.Helper()
	shipped := Day(2023, 6, 1)
	m := &model.Machine{
		SerialNumber:  serialNumber,
		ModelID:       l.Model.ID,
		EngineModelID: &l.Engine.ID,
		EngineSerial:  "E-" + serialNumber,
		ShipmentDate:  &shipped,
	}
	if client != nil {
		m.ClientID = &client.ID
	}
	if service != nil {
		m.ServiceCompanyID = &service.ID
	}
	require.NoError(t, gdb.Omit("Model", "EngineModel", "Client", "ServiceCompany").Create(m).Error)
	return m
}

// Maintenance inserts a maintenance record performed by org (may be nil).
func Maintenance(t testing.TB, gdb *gorm.DB, l *Lookups, m *model.Machine, org, service *model.User, date time.Time) *model.Maintenance {
	t.Helper()
	mt := &model.Maintenance{MachineID: m.ID, TypeID: l.MaintenanceType.ID, Date: date, Hours: 100}
	if org != nil {
		mt.OrganizationID = &org.ID
	}
	if service != nil {
		mt.ServiceCompanyID = &service.ID
	}
	require.NoError(t, gdb.Omit("Machine", "Type", "Organization", "ServiceCompany").Create(mt).Error)
	return mt
}

// Claim inserts a claim attributed to service (may be nil).
func Claim(t testing.TB, gdb *gorm.DB, l *Lookups, m *model.Machine, service *model.User, failed time.Time) *model.Claim {
	t.Helper()
	c := &model.Claim{
		MachineID:        m.ID,
		FailureDate:      failed,
		Hours:            50,
		FailureNodeID:    l.FailureNode.ID,
		RecoveryMethodID: l.RecoveryMethod.ID,
	}
	if service != nil {
		c.ServiceCompanyID = &service.ID
	}
	require.NoError(t, gdb.Omit("Machine", "FailureNode", "RecoveryMethod", "ServiceCompany").Create(c).Error)
	return c
}

// Day is midnight UTC on the given date.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
