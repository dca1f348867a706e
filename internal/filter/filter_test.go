package filter

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fleet-records-backend/internal/access"
	"fleet-records-backend/internal/db/dbtest"
	"fleet-records-backend/internal/model"
	"fleet-records-backend/internal/scope"
)

func bind(t *testing.T, query string) (Dashboard, error) {
	t.Helper()
	var d Dashboard
	err := binding.Query.Bind(httptest.NewRequest("GET", "/dashboard?"+query, nil), &d)
	return d, err
}

func TestBind(t *testing.T) {
	d, err := bind(t, "tab=claims&serial_quick=ab&m-model=3&mt-type=4&mt-serial=x_1&cl-failure_node=5&cl-service_company=6&page=2")
	require.NoError(t, err)

	assert.Equal(t, TabClaims, d.ActiveTab())
	assert.Equal(t, "ab", d.SerialQuick)
	assert.Equal(t, int64(3), d.Machines.Model)
	assert.Equal(t, int64(4), d.Maintenance.Type)
	assert.Equal(t, "x_1", d.Maintenance.Serial)
	assert.Equal(t, int64(5), d.Claims.FailureNode)
	assert.Equal(t, int64(6), d.Claims.ServiceCompany)
	assert.Equal(t, 2, d.Number())
}

func TestBind_Defaults(t *testing.T) {
	d, err := bind(t, "m-model=&page=")
	require.NoError(t, err)
	assert.Equal(t, TabMachines, d.ActiveTab())
	assert.Zero(t, d.Machines.Model)
	assert.Equal(t, 1, d.Number())
}

func TestBind_Rejects(t *testing.T) {
	for _, q := range []string{"tab=users", "m-model=-1", "m-model=abc", "page=-3", "page=100001", "page=9223372036854775807"} {
		_, err := bind(t, q)
		assert.Error(t, err, q)
	}
}

type fixture struct {
	db      *gorm.DB
	l       *dbtest.Lookups
	client  *model.User
	service *model.User
	rival   *model.User
}

func setup(t *testing.T) *fixture {
	gdb := dbtest.New(t)
	f := &fixture{db: gdb, l: dbtest.SeedLookups(t, gdb)}
	f.client = dbtest.User(t, gdb, "client@example.com", model.RoleClient)
	f.service = dbtest.User(t, gdb, "service@example.com", model.RoleServiceCompany)
	f.rival = dbtest.User(t, gdb, "rival@example.com", model.RoleServiceCompany)
	return f
}

func serials(t *testing.T, db *gorm.DB) []string {
	var out []string
	require.NoError(t, db.Model(&model.Machine{}).Order("machines.serial_number").
		Pluck("machines.serial_number", &out).Error)
	return out
}

func TestMachines_SerialQuick(t *testing.T) {
	f := setup(t)
	dbtest.Machine(t, f.db, f.l, "AB_1", nil, nil)
	dbtest.Machine(t, f.db, f.l, "ABX1", nil, nil)
	dbtest.Machine(t, f.db, f.l, "ZZ-9", nil, nil)

	assert.ElementsMatch(t, []string{"AB_1", "ABX1"}, serials(t, f.db.Scopes(Machines{SerialQuick: "ab"}.Apply)))
	// '_' is literal, not a single-character wildcard.
	assert.Equal(t, []string{"AB_1"}, serials(t, f.db.Scopes(Machines{SerialQuick: "b_"}.Apply)))
	assert.Empty(t, serials(t, f.db.Scopes(Machines{SerialQuick: "%"}.Apply)))
	assert.Len(t, serials(t, f.db.Scopes(Machines{}.Apply)), 3)
}

func TestMachines_ExactReference(t *testing.T) {
	f := setup(t)
	other := model.MachineModel{}
	other.Name = "PD8"
	require.NoError(t, f.db.Create(&other).Error)

	dbtest.Machine(t, f.db, f.l, "A1", nil, nil)
	m := dbtest.Machine(t, f.db, f.l, "A2", nil, nil)
	require.NoError(t, f.db.Model(m).Update("model_id", other.ID).Error)

	assert.Equal(t, []string{"A2"}, serials(t, f.db.Scopes(Machines{Model: other.ID}.Apply)))
	assert.Equal(t, []string{"A1", "A2"}, serials(t, f.db.Scopes(Machines{EngineModel: f.l.Engine.ID}.Apply)))
	assert.Empty(t, serials(t, f.db.Scopes(Machines{SteerAxleModel: f.l.SteerAxle.ID}.Apply)))
}

func TestFiltersNeverWidenScope(t *testing.T) {
	f := setup(t)
	mine := dbtest.Machine(t, f.db, f.l, "MINE-1", f.client, f.service)
	theirs := dbtest.Machine(t, f.db, f.l, "THEIRS-1", nil, f.rival)
	day := dbtest.Day(2024, 2, 1)
	dbtest.Maintenance(t, f.db, f.l, mine, f.service, f.service, day)
	dbtest.Maintenance(t, f.db, f.l, theirs, f.rival, f.rival, day)
	dbtest.Claim(t, f.db, f.l, theirs, f.rival, day)

	client := access.ActorFor(f.client)

	got := serials(t, f.db.Scopes(scope.Machines(client), Machines{SerialQuick: "THEIRS"}.Apply))
	assert.Empty(t, got)

	var n int64
	require.NoError(t, f.db.Model(&model.Maintenance{}).
		Scopes(scope.Maintenance(client), Maintenance{ServiceCompany: f.rival.ID}.Apply).Count(&n).Error)
	assert.Zero(t, n)

	require.NoError(t, f.db.Model(&model.Maintenance{}).
		Scopes(scope.Maintenance(client), Maintenance{Serial: "mine"}.Apply).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	require.NoError(t, f.db.Model(&model.Claim{}).
		Scopes(scope.Claims(access.ActorFor(f.service)), Claims{ServiceCompany: f.rival.ID}.Apply).Count(&n).Error)
	assert.Zero(t, n)
}

func TestClaims_Apply(t *testing.T) {
	f := setup(t)
	m := dbtest.Machine(t, f.db, f.l, "C-1", nil, nil)
	dbtest.Claim(t, f.db, f.l, m, f.service, dbtest.Day(2024, 1, 1))
	dbtest.Claim(t, f.db, f.l, m, nil, dbtest.Day(2024, 1, 2))

	var n int64
	require.NoError(t, f.db.Model(&model.Claim{}).
		Scopes(Claims{FailureNode: f.l.FailureNode.ID, RecoveryMethod: f.l.RecoveryMethod.ID}.Apply).Count(&n).Error)
	assert.Equal(t, int64(2), n)

	require.NoError(t, f.db.Model(&model.Claim{}).
		Scopes(Claims{ServiceCompany: f.service.ID}.Apply).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
