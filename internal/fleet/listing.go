package fleet

import (
	"context"

	"fleet-records-backend/internal/access"
	"fleet-records-backend/internal/export"
	"fleet-records-backend/internal/filter"
	"fleet-records-backend/internal/scope"
	"fleet-records-backend/internal/store"
	"fleet-records-backend/internal/table"
)

// Dashboard holds one page of each tab plus the query it was built from.
type Dashboard struct {
	Tab         string                           `json:"tab"`
	Filters     filter.Dashboard                 `json:"filters"`
	Machines    table.Page[table.MachineRow]     `json:"machines"`
	Maintenance table.Page[table.MaintenanceRow] `json:"maintenance"`
	Claims      table.Page[table.ClaimRow]       `json:"claims"`
	CanCreate   bool                             `json:"can_create_machine"`
}

// Dashboard builds all three tabs. Only the active tab honours the page
// number; the others show their first page.
func (s *Service) Dashboard(ctx context.Context, actor access.Actor, q filter.Dashboard) (*Dashboard, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	tab := q.ActiveTab()
	pageOf := func(t string) filter.Paging {
		if t == tab {
			return q.Paging
		}
		return filter.Paging{}
	}

	machines, err := s.ListMachines(ctx, actor, q.Machines, pageOf(filter.TabMachines))
	if err != nil {
		return nil, err
	}
	mts, err := s.ListMaintenance(ctx, actor, q.Maintenance, pageOf(filter.TabMaintenance))
	if err != nil {
		return nil, err
	}
	claims, err := s.ListClaims(ctx, actor, q.Claims, pageOf(filter.TabClaims))
	if err != nil {
		return nil, err
	}

	q.Tab = tab
	return &Dashboard{
		Tab:         tab,
		Filters:     q,
		Machines:    machines,
		Maintenance: mts,
		Claims:      claims,
		CanCreate:   actor.Role == access.RoleManager,
	}, nil
}

// ListMachines returns one page of the machines actor may see.
func (s *Service) ListMachines(ctx context.Context, actor access.Actor, f filter.Machines, p filter.Paging) (table.Page[table.MachineRow], error) {
	if err := requireActor(actor); err != nil {
		return table.Page[table.MachineRow]{}, err
	}
	n, per := p.Number(), s.opts.MachinesPerPage
	ms, total, err := s.store.ListMachines(ctx, window(n, per), scope.Machines(actor), f.Apply)
	if err != nil {
		return table.Page[table.MachineRow]{}, err
	}
	rows := make([]table.MachineRow, len(ms))
	for i := range ms {
		rows[i] = table.Machine(&ms[i], s.machineCaps(actor, &ms[i]))
	}
	return table.NewPage(rows, n, per, total), nil
}

// ListMaintenance returns one page of the maintenance records actor may see.
func (s *Service) ListMaintenance(ctx context.Context, actor access.Actor, f filter.Maintenance, p filter.Paging) (table.Page[table.MaintenanceRow], error) {
	if err := requireActor(actor); err != nil {
		return table.Page[table.MaintenanceRow]{}, err
	}
	n, per := p.Number(), s.opts.MaintenancePerPage
	mts, total, err := s.store.ListMaintenance(ctx, window(n, per), scope.Maintenance(actor), f.Apply)
	if err != nil {
		return table.Page[table.MaintenanceRow]{}, err
	}
	return table.NewPage(s.maintenanceRows(actor, mts), n, per, total), nil
}

// ListClaims returns one page of the claims actor may see.
func (s *Service) ListClaims(ctx context.Context, actor access.Actor, f filter.Claims, p filter.Paging) (table.Page[table.ClaimRow], error) {
	if err := requireActor(actor); err != nil {
		return table.Page[table.ClaimRow]{}, err
	}
	n, per := p.Number(), s.opts.ClaimsPerPage
	claims, total, err := s.store.ListClaims(ctx, window(n, per), scope.Claims(actor), f.Apply)
	if err != nil {
		return table.Page[table.ClaimRow]{}, err
	}
	return table.NewPage(s.claimRows(actor, claims), n, per, total), nil
}

// ExportMachines renders every machine actor may see that matches f as an
// xlsx workbook, returning its bytes and download name.
func (s *Service) ExportMachines(ctx context.Context, actor access.Actor, f filter.Machines) ([]byte, string, error) {
	if err := requireActor(actor); err != nil {
		return nil, "", err
	}
	ms, _, err := s.store.ListMachines(ctx, store.Window{}, scope.Machines(actor), f.Apply)
	if err != nil {
		return nil, "", err
	}
	data, err := export.Machines(ms, s.opts.ExportColumns)
	if err != nil {
		return nil, "", err
	}
	return data, export.Filename(s.now()), nil
}
