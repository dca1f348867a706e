package fleet

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fleet-records-backend/internal/access"
	"fleet-records-backend/internal/export"
	"fleet-records-backend/internal/filter"
)

func TestDashboard_ScopedPerRole(t *testing.T) {
	w := setup(t, access.DefaultPolicy())
	ctx := context.Background()
	_, err := w.svc.CreateClaim(ctx, as(w.rival), "FOR-1", w.claimInput())
	require.NoError(t, err)

	for _, tc := range []struct {
		name     string
		user     access.Actor
		machines int64
		claims   int64
	}{
		{"manager", as(w.manager), 2, 1},
		{"client", as(w.client), 1, 0},
		{"other client", as(w.other), 1, 1},
		{"service company", as(w.service), 1, 0},
		{"rival", as(w.rival), 1, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, err := w.svc.Dashboard(ctx, tc.user, filter.Dashboard{})
			require.NoError(t, err)
			assert.Equal(t, filter.TabMachines, d.Tab)
			assert.Equal(t, tc.machines, d.Machines.Total)
			assert.Equal(t, tc.claims, d.Claims.Total)
			assert.Equal(t, tc.user.Role == access.RoleManager, d.CanCreate)
		})
	}

	_, err = w.svc.Dashboard(ctx, access.Actor{}, filter.Dashboard{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestDashboard_PagesOnlyTheActiveTab(t *testing.T) {
	w := setup(t, access.DefaultPolicy())
	ctx := context.Background()

	q := filter.Dashboard{Tab: filter.TabClaims, Paging: filter.Paging{Page: 3}}
	d, err := w.svc.Dashboard(ctx, as(w.manager), q)
	require.NoError(t, err)
	assert.Equal(t, filter.TabClaims, d.Tab)
	assert.Equal(t, 3, d.Claims.Page)
	assert.Equal(t, 1, d.Machines.Page)
	assert.Len(t, d.Machines.Rows, 2)
	assert.Empty(t, d.Claims.Rows)
}

func TestListMachines_FiltersNeverWiden(t *testing.T) {
	w := setup(t, access.DefaultPolicy())
	ctx := context.Background()

	page, err := w.svc.ListMachines(ctx, as(w.client), filter.Machines{SerialQuick: "for"}, filter.Paging{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	page, err = w.svc.ListMachines(ctx, as(w.manager), filter.Machines{SerialQuick: "for"}, filter.Paging{})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "FOR-1", page.Rows[0].SerialNumber)
}

func TestListMachines_Paging(t *testing.T) {
	w := setup(t, access.DefaultPolicy())
	w.svc.opts.MachinesPerPage = 1
	ctx := context.Background()

	first, err := w.svc.ListMachines(ctx, as(w.manager), filter.Machines{}, filter.Paging{})
	require.NoError(t, err)
	second, err := w.svc.ListMachines(ctx, as(w.manager), filter.Machines{}, filter.Paging{Page: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, first.Pages)
	require.Len(t, first.Rows, 1)
	require.Len(t, second.Rows, 1)
	assert.NotEqual(t, first.Rows[0].SerialNumber, second.Rows[0].SerialNumber)
}

func TestListMaintenance_Filters(t *testing.T) {
	w := setup(t, access.DefaultPolicy())
	ctx := context.Background()
	manager := as(w.manager)
	_, err := w.svc.CreateMaintenance(ctx, manager, "OWN-1", w.maintenanceInput(nil, ptr(w.service.ID)))
	require.NoError(t, err)
	_, err = w.svc.CreateMaintenance(ctx, manager, "FOR-1", w.maintenanceInput(nil, ptr(w.rival.ID)))
	require.NoError(t, err)

	page, err := w.svc.ListMaintenance(ctx, manager, filter.Maintenance{ServiceCompany: w.rival.ID}, filter.Paging{})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "FOR-1", page.Rows[0].MachineSerial)

	page, err = w.svc.ListMaintenance(ctx, manager, filter.Maintenance{Serial: "own"}, filter.Paging{})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "OWN-1", page.Rows[0].MachineSerial)

	page, err = w.svc.ListMaintenance(ctx, as(w.client), filter.Maintenance{ServiceCompany: w.rival.ID}, filter.Paging{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestExportMachines(t *testing.T) {
	w := setup(t, access.DefaultPolicy())
	w.svc.now = func() time.Time { return time.Date(2024, 7, 9, 15, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	data, name, err := w.svc.ExportMachines(ctx, as(w.client), filter.Machines{})
	require.NoError(t, err)
	assert.Equal(t, "machines_2024-07-09.xlsx", name)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"OWN-1", "PD5", "2023-06-01", "client@example.com", "service@example.com"}, rows[1])

	data, _, err = w.svc.ExportMachines(ctx, as(w.service), filter.Machines{})
	require.NoError(t, err)
	fs, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer fs.Close()
	rows, err = fs.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2, "FOR-1 belongs to another service company")
	assert.Equal(t, "OWN-1", rows[1][0])

	data, _, err = w.svc.ExportMachines(ctx, as(w.manager), filter.Machines{SerialQuick: "nothing"})
	require.NoError(t, err)
	f2, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f2.Close()
	rows, err = f2.GetRows(export.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, _, err = w.svc.ExportMachines(ctx, access.Actor{}, filter.Machines{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
