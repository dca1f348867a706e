package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-records-backend/internal/auth"
	"fleet-records-backend/internal/db/dbtest"
	"fleet-records-backend/internal/model"
	"fleet-records-backend/internal/store"
)

func TestParse_Fixture(t *testing.T) {
	f, err := LoadFile(context.Background(), "testdata/fixture.yaml")
	require.NoError(t, err)

	require.Len(t, f.Machines, 2)
	assert.Equal(t, "2023-06-01", f.Machines[0].ShipmentDate, "unquoted dates stay text")
	assert.Equal(t, "10VB-00", f.Machines[0].TransmissionModel)
	assert.Equal(t, "2024-02-05", f.Claims[0].RecoveryDate)
	assert.Equal(t, 250, f.Maintenance[0].Hours)
	assert.Equal(t, "First scheduled service", f.Lookups["maintenance_types"][0].Description)
}

func TestParse_Empty(t *testing.T) {
	f, err := Parse(context.Background(), []byte(""))
	require.NoError(t, err)
	assert.Empty(t, f.Machines)
}

func TestParse_SchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown section":  "trucks: []",
		"unknown lookup":   "lookups:\n  colours:\n    - name: red",
		"missing model":    "machines:\n  - serial_number: PD-1",
		"bad serial":       "machines:\n  - serial_number: PD 1\n    model: PD5",
		"bad role":         "users:\n  - email: a@example.com\n    password: long-enough\n    role: admin",
		"short password":   "users:\n  - email: a@example.com\n    password: short\n    role: client",
		"negative hours":   "maintenance:\n  - machine: PD-1\n    type: TO-1\n    date: 2024-01-01\n    hours: -5",
		"malformed date":   "maintenance:\n  - machine: PD-1\n    type: TO-1\n    date: 01.02.2024",
		"unexpected field": "claims:\n  - machine: PD-1\n    failure_date: 2024-01-01\n    failure_node: E\n    recovery_method: R\n    colour: red",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(context.Background(), []byte(doc))
			var se *SchemaError
			require.ErrorAs(t, err, &se)
			assert.NotEmpty(t, se.Problems)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse(context.Background(), []byte("machines: [unclosed"))
	require.Error(t, err)
	var se *SchemaError
	assert.False(t, errors.As(err, &se))
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.New(t)
	s := store.NewGormStore(gdb)

	f, err := LoadFile(ctx, "testdata/fixture.yaml")
	require.NoError(t, err)

	report, err := NewLoader(s).Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Report{Lookups: 5, Users: 3, Machines: 2, Maintenance: 1, Claims: 1}, report)

	m, err := s.MachineBySerial(ctx, "PD-0001")
	require.NoError(t, err)
	assert.Equal(t, "PD5", m.Model.Name)
	require.NotNil(t, m.TransmissionModel, "unlisted lookups are created on demand")
	assert.Equal(t, "10VB-00", m.TransmissionModel.Name)
	assert.Equal(t, "client@example.com", m.Client.Email)
	assert.Equal(t, "service@example.com", m.ServiceCompany.Email)

	u, err := s.UserByEmail(ctx, "client@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleClient, u.Role)
	assert.NoError(t, auth.CheckPassword(u.PasswordHash, "client-pass"))

	claims, _, err := s.ListClaims(ctx, store.Window{})
	require.NoError(t, err)
	require.Len(t, claims, 1)
	require.NotNil(t, claims[0].Downtime())
	assert.Equal(t, 4, *claims[0].Downtime())

	again, err := NewLoader(s).Apply(ctx, f)
	require.NoError(t, err)
	assert.Zero(t, again.Maintenance)
	assert.Zero(t, again.Claims)

	machines, total, err := s.ListMachines(ctx, store.Window{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, machines, 2)
}

func TestApply_RejectsWrongRole(t *testing.T) {
	ctx := context.Background()
	s := store.NewGormStore(dbtest.New(t))

	f, err := Parse(ctx, []byte(`
users:
  - email: service@example.com
    password: service-pass
    role: service_company
machines:
  - serial_number: PD-1
    model: PD5
    client: service@example.com
`))
	require.NoError(t, err)

	_, err = NewLoader(s).Apply(ctx, f)
	assert.ErrorContains(t, err, `has role "service_company", want "client"`)
}

func TestApply_UnknownMachine(t *testing.T) {
	ctx := context.Background()
	s := store.NewGormStore(dbtest.New(t))

	f, err := Parse(ctx, []byte("maintenance:\n  - machine: GHOST-1\n    type: TO-1\n    date: 2024-01-01\n"))
	require.NoError(t, err)

	_, err = NewLoader(s).Apply(ctx, f)
	assert.ErrorContains(t, err, `unknown machine "GHOST-1"`)
}
