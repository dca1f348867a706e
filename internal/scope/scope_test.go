package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fleet-records-backend/internal/access"
	"fleet-records-backend/internal/db/dbtest"
	"fleet-records-backend/internal/model"
)

type world struct {
	db                     *gorm.DB
	manager, client, other *model.User
	service, rival, nobody *model.User
	owned, foreign, orphan *model.Machine
}

// Machines: owned (client, service), foreign (other, rival), orphan (no links).
// The service company also performed maintenance on the foreign machine.
func setup(t *testing.T) *world {
	gdb := dbtest.New(t)
	l := dbtest.SeedLookups(t, gdb)
	w := &world{db: gdb}
	w.manager = dbtest.User(t, gdb, "manager@example.com", model.RoleManager)
	w.client = dbtest.User(t, gdb, "client@example.com", model.RoleClient)
	w.other = dbtest.User(t, gdb, "other@example.com", model.RoleClient)
	w.service = dbtest.User(t, gdb, "service@example.com", model.RoleServiceCompany)
	w.rival = dbtest.User(t, gdb, "rival@example.com", model.RoleServiceCompany)
	w.nobody = dbtest.User(t, gdb, "nobody@example.com", "")

	w.owned = dbtest.Machine(t, gdb, l, "OWN-1", w.client, w.service)
	w.foreign = dbtest.Machine(t, gdb, l, "FOR-1", w.other, w.rival)
	w.orphan = dbtest.Machine(t, gdb, l, "ORPH-1", nil, nil)

	day := dbtest.Day(2024, 1, 1)
	dbtest.Maintenance(t, gdb, l, w.owned, w.service, nil, day)
	dbtest.Maintenance(t, gdb, l, w.foreign, w.service, w.rival, day)
	dbtest.Maintenance(t, gdb, l, w.foreign, w.rival, w.rival, day)
	dbtest.Maintenance(t, gdb, l, w.orphan, nil, nil, day)

	dbtest.Claim(t, gdb, l, w.owned, w.service, day)
	dbtest.Claim(t, gdb, l, w.foreign, w.rival, day)
	dbtest.Claim(t, gdb, l, w.orphan, w.service, day)
	return w
}

func actor(u *model.User) access.Actor {
	return access.ActorFor(u)
}

func machineSerials(t *testing.T, w *world, a access.Actor) []string {
	var serials []string
	require.NoError(t, w.db.Model(&model.Machine{}).Scopes(Machines(a)).
		Order("machines.serial_number").Pluck("machines.serial_number", &serials).Error)
	return serials
}

func maintenanceMachines(t *testing.T, w *world, a access.Actor) []int64 {
	var ids []int64
	require.NoError(t, w.db.Model(&model.Maintenance{}).Scopes(Maintenance(a)).
		Order("maintenances.id").Pluck("maintenances.machine_id", &ids).Error)
	return ids
}

func claimMachines(t *testing.T, w *world, a access.Actor) []int64 {
	var ids []int64
	require.NoError(t, w.db.Model(&model.Claim{}).Scopes(Claims(a)).
		Order("claims.id").Pluck("claims.machine_id", &ids).Error)
	return ids
}

func TestMachines(t *testing.T) {
	w := setup(t)

	assert.Equal(t, []string{"FOR-1", "ORPH-1", "OWN-1"}, machineSerials(t, w, actor(w.manager)))
	assert.Equal(t, []string{"OWN-1"}, machineSerials(t, w, actor(w.client)))
	assert.Equal(t, []string{"OWN-1"}, machineSerials(t, w, actor(w.service)))
	assert.Equal(t, []string{"FOR-1"}, machineSerials(t, w, actor(w.rival)))
	assert.Empty(t, machineSerials(t, w, actor(w.nobody)))
	assert.Empty(t, machineSerials(t, w, access.Actor{}))
}

func TestMaintenance(t *testing.T) {
	w := setup(t)

	assert.Len(t, maintenanceMachines(t, w, actor(w.manager)), 4)
	assert.Equal(t, []int64{w.owned.ID}, maintenanceMachines(t, w, actor(w.client)))
	assert.Equal(t, []int64{w.foreign.ID, w.foreign.ID}, maintenanceMachines(t, w, actor(w.other)))
	assert.Empty(t, maintenanceMachines(t, w, actor(w.nobody)))
}

func TestMaintenance_ServiceCompanySeesWorkOnForeignMachines(t *testing.T) {
	w := setup(t)

	// The foreign machine is serviced by the rival, yet the record the
	// service company performed there stays visible to it.
	assert.Equal(t, []int64{w.owned.ID, w.foreign.ID}, maintenanceMachines(t, w, actor(w.service)))
	assert.NotContains(t, machineSerials(t, w, actor(w.service)), "FOR-1")
}

func TestClaims(t *testing.T) {
	w := setup(t)

	assert.Len(t, claimMachines(t, w, actor(w.manager)), 3)
	assert.Equal(t, []int64{w.owned.ID}, claimMachines(t, w, actor(w.client)))
	// Attribution decides, not the machine link.
	assert.Equal(t, []int64{w.owned.ID, w.orphan.ID}, claimMachines(t, w, actor(w.service)))
	assert.Equal(t, []int64{w.foreign.ID}, claimMachines(t, w, actor(w.rival)))
	assert.Empty(t, claimMachines(t, w, actor(w.nobody)))
}

func TestScopesCompose(t *testing.T) {
	w := setup(t)

	var serials []string
	require.NoError(t, w.db.Model(&model.Machine{}).
		Scopes(Machines(actor(w.client))).
		Where("machines.serial_number = ?", "FOR-1").
		Pluck("machines.serial_number", &serials).Error)
	assert.Empty(t, serials)
}
