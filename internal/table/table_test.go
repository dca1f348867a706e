package table

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fleet-records-backend/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2}, 2, 20, 41)
	assert.Equal(t, 3, p.Pages)
	assert.Equal(t, 2, p.Page)

	empty := NewPage[int](nil, 1, 15, 0)
	assert.Equal(t, 1, empty.Pages)
	assert.NotNil(t, empty.Rows)

	assert.Equal(t, 0, Offset(1, 20))
	assert.Equal(t, 30, Offset(3, 15))
	assert.Equal(t, 0, Offset(0, 15))
	assert.Equal(t, (MaxPage-1)*20, Offset(math.MaxInt, 20))
}

func TestMachine_ResolvesReferences(t *testing.T) {
	shipped := day(2023, 6, 1)
	clientID := int64(7)
	m := &model.Machine{
		ID:           1,
		SerialNumber: "PD-1",
		Model:        model.MachineModel{Directory: model.Directory{Name: "PD5"}},
		EngineModel:  &model.EngineModel{Directory: model.Directory{Name: "D-240"}},
		EngineSerial: "E1",
		ShipmentDate: &shipped,
		ClientID:     &clientID,
		Client:       &model.User{ID: 7, Email: "client@example.com"},
	}

	row := Machine(m, Caps{CanEdit: true})
	assert.Equal(t, "PD5", row.Model)
	assert.Equal(t, "D-240", row.EngineModel)
	assert.Equal(t, "", row.TransmissionModel)
	assert.Equal(t, "2023-06-01", row.ShipmentDate)
	assert.Equal(t, "", row.ContractDate)
	assert.Equal(t, "client@example.com", row.Client)
	assert.Equal(t, int64(7), row.ClientID)
	assert.Equal(t, "", row.ServiceCompany)
	assert.True(t, row.CanEdit)
	assert.False(t, row.CanDelete)

	pub := Public(m)
	assert.Equal(t, "PD-1", pub.SerialNumber)
	assert.Equal(t, "E1", pub.EngineSerial)
	assert.Equal(t, "", pub.SteerAxleModel)
}

func TestClaim_Downtime(t *testing.T) {
	recovered := day(2024, 1, 10)
	c := &model.Claim{
		Machine:      model.Machine{SerialNumber: "PD-1"},
		FailureDate:  day(2024, 1, 1),
		RecoveryDate: &recovered,
		FailureNode:  model.FailureNode{Directory: model.Directory{Name: "Engine"}},
	}
	row := Claim(c, Caps{})
	assert.Equal(t, "PD-1", row.MachineSerial)
	assert.Equal(t, "Engine", row.FailureNode)
	assert.Equal(t, "2024-01-10", row.RecoveryDate)
	if assert.NotNil(t, row.Downtime) {
		assert.Equal(t, 9, *row.Downtime)
	}

	c.RecoveryDate = nil
	row = Claim(c, Caps{})
	assert.Nil(t, row.Downtime)
	assert.Equal(t, "", row.RecoveryDate)
}

func TestMaintenance(t *testing.T) {
	mt := &model.Maintenance{
		Machine:      model.Machine{SerialNumber: "PD-2"},
		Type:         model.MaintenanceType{Directory: model.Directory{Name: "TO-1"}},
		Date:         day(2024, 2, 3),
		Hours:        250,
		Organization: &model.User{Email: "service@example.com"},
	}
	row := Maintenance(mt, Caps{CanDelete: true})
	assert.Equal(t, "TO-1", row.Type)
	assert.Equal(t, "2024-02-03", row.Date)
	assert.Equal(t, "service@example.com", row.Organization)
	assert.Equal(t, "", row.ServiceCompany)
	assert.True(t, row.CanDelete)
}
