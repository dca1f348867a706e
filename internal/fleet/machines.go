package fleet

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fleet-records-backend/internal/access"
	"fleet-records-backend/internal/model"
	"fleet-records-backend/internal/scope"
	"fleet-records-backend/internal/serial"
	"fleet-records-backend/internal/store"
	"fleet-records-backend/internal/table"
)

// recentLimit is how many maintenance records and claims a machine's
// detail view shows.
const recentLimit = 5

// MachineDetail is a single machine with what the actor may do with it and
// its most recent records.
type MachineDetail struct {
	Machine           table.MachineRow       `json:"machine"`
	CanEdit           bool                   `json:"can_edit"`
	CanDelete         bool                   `json:"can_delete"`
	CanAddMaintenance bool                   `json:"can_add_maintenance"`
	CanAddClaim       bool                   `json:"can_add_claim"`
	Maintenance       []table.MaintenanceRow `json:"maintenance"`
	Claims            []table.ClaimRow       `json:"claims"`
}

// LookupSerial is the public lookup: no identity required.
func (s *Service) LookupSerial(ctx context.Context, raw string) (*table.PublicMachine, error) {
	sn, err := serial.Normalize(raw)
	if err != nil {
		return nil, invalid("serial_number", err.Error())
	}
	m, err := s.store.MachineBySerial(ctx, sn)
	if err != nil {
		return nil, storeError(err, "machine")
	}
	pub := table.Public(m)
	return &pub, nil
}

// visibleMachine loads the machine behind a URL serial, reporting
// ErrNotFound when it is missing or hidden from actor.
func (s *Service) visibleMachine(ctx context.Context, actor access.Actor, rawSerial string) (*model.Machine, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	m, err := s.store.MachineBySerial(ctx, serial.Canonical(rawSerial))
	if err != nil {
		return nil, storeError(err, "machine")
	}
	if !s.policy.Can(actor, access.View, m) {
		return nil, ErrNotFound
	}
	return m, nil
}

func (s *Service) machineCaps(actor access.Actor, m *model.Machine) table.Caps {
	return table.Caps{
		CanEdit:   s.policy.Can(actor, access.Edit, m),
		CanDelete: s.policy.Can(actor, access.Delete, m),
	}
}

// MachineDetail returns the machine with its last maintenance records and
// claims, each list restricted to what actor may see.
func (s *Service) MachineDetail(ctx context.Context, actor access.Actor, rawSerial string) (*MachineDetail, error) {
	m, err := s.visibleMachine(ctx, actor, rawSerial)
	if err != nil {
		return nil, err
	}

	onMachine := func(column string) store.Scope {
		return func(db *gorm.DB) *gorm.DB { return db.Where(column+" = ?", m.ID) }
	}
	last := store.Window{Limit: recentLimit}

	mts, _, err := s.store.ListMaintenance(ctx, last, scope.Maintenance(actor), onMachine("maintenances.machine_id"))
	if err != nil {
		return nil, err
	}
	claims, _, err := s.store.ListClaims(ctx, last, scope.Claims(actor), onMachine("claims.machine_id"))
	if err != nil {
		return nil, err
	}

	caps := s.machineCaps(actor, m)
	d := &MachineDetail{
		Machine:           table.Machine(m, caps),
		CanEdit:           caps.CanEdit,
		CanDelete:         caps.CanDelete,
		CanAddMaintenance: s.policy.Can(actor, access.Create, access.MaintenanceOn(m)),
		CanAddClaim:       s.policy.CanOpenClaimForm(actor, m),
		Maintenance:       s.maintenanceRows(actor, mts),
		Claims:            s.claimRows(actor, claims),
	}
	return d, nil
}

// MachineForm reports whether actor may open the new machine form.
func (s *Service) MachineForm(actor access.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !s.policy.Can(actor, access.Create, (*model.Machine)(nil)) {
		return ErrPermissionDenied
	}
	return nil
}

// EditableMachine loads the machine for its edit form.
func (s *Service) EditableMachine(ctx context.Context, actor access.Actor, rawSerial string) (*table.MachineRow, error) {
	m, err := s.visibleMachine(ctx, actor, rawSerial)
	if err != nil {
		return nil, err
	}
	if !s.policy.Can(actor, access.Edit, m) {
		return nil, ErrPermissionDenied
	}
	row := table.Machine(m, s.machineCaps(actor, m))
	return &row, nil
}

// CreateMachine registers a new machine. Managers only.
func (s *Service) CreateMachine(ctx context.Context, actor access.Actor, in MachineInput) (*table.MachineRow, error) {
	if err := s.MachineForm(actor); err != nil {
		return nil, err
	}

	var m model.Machine
	if err := s.applyMachine(ctx, in, &m); err != nil {
		return nil, err
	}
	if err := s.store.CreateMachine(ctx, &m); err != nil {
		return nil, storeError(err, fmt.Sprintf("machine %s", m.SerialNumber))
	}
	return s.machineRow(ctx, actor, m.SerialNumber)
}

// UpdateMachine replaces every field of the machine behind rawSerial,
// including, possibly, the serial itself.
func (s *Service) UpdateMachine(ctx context.Context, actor access.Actor, rawSerial string, in MachineInput) (*table.MachineRow, error) {
	m, err := s.visibleMachine(ctx, actor, rawSerial)
	if err != nil {
		return nil, err
	}
	if !s.policy.Can(actor, access.Edit, m) {
		return nil, ErrPermissionDenied
	}

	if err := s.applyMachine(ctx, in, m); err != nil {
		return nil, err
	}
	if err := s.store.UpdateMachine(ctx, m); err != nil {
		return nil, storeError(err, fmt.Sprintf("machine %s", m.SerialNumber))
	}
	return s.machineRow(ctx, actor, m.SerialNumber)
}

// DeleteMachine removes a machine and everything recorded against it.
func (s *Service) DeleteMachine(ctx context.Context, actor access.Actor, rawSerial string) error {
	m, err := s.visibleMachine(ctx, actor, rawSerial)
	if err != nil {
		return err
	}
	if !s.policy.Can(actor, access.Delete, m) {
		return ErrPermissionDenied
	}
	return storeError(s.store.DeleteMachine(ctx, m.ID), "machine")
}

func (s *Service) machineRow(ctx context.Context, actor access.Actor, sn string) (*table.MachineRow, error) {
	m, err := s.store.MachineBySerial(ctx, sn)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	row := table.Machine(m, s.machineCaps(actor, m))
	return &row, nil
}
