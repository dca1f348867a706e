package fleet

import (
	"context"

	"fleet-records-backend/internal/access"
	"fleet-records-backend/internal/model"
	"fleet-records-backend/internal/table"
)

func (s *Service) maintenanceRows(actor access.Actor, mts []model.Maintenance) []table.MaintenanceRow {
	rows := make([]table.MaintenanceRow, len(mts))
	for i := range mts {
		rows[i] = table.Maintenance(&mts[i], table.Caps{
			CanEdit:   s.policy.Can(actor, access.Edit, &mts[i]),
			CanDelete: s.policy.Can(actor, access.Delete, &mts[i]),
		})
	}
	return rows
}

func (s *Service) claimRows(actor access.Actor, claims []model.Claim) []table.ClaimRow {
	rows := make([]table.ClaimRow, len(claims))
	for i := range claims {
		rows[i] = table.Claim(&claims[i], table.Caps{
			CanEdit:   s.policy.Can(actor, access.Edit, &claims[i]),
			CanDelete: s.policy.Can(actor, access.Delete, &claims[i]),
		})
	}
	return rows
}

// MaintenanceForm checks that actor may add maintenance to the machine.
func (s *Service) MaintenanceForm(ctx context.Context, actor access.Actor, rawSerial string) error {
	m, err := s.visibleMachine(ctx, actor, rawSerial)
	if err != nil {
		return err
	}
	if !s.policy.Can(actor, access.Create, access.MaintenanceOn(m)) {
		return ErrPermissionDenied
	}
	return nil
}

// CreateMaintenance records a maintenance event on the machine. A service
// company that names no organization is recorded as having done the work.
func (s *Service) CreateMaintenance(ctx context.Context, actor access.Actor, rawSerial string, in MaintenanceInput) (*table.MaintenanceRow, error) {
	m, err := s.visibleMachine(ctx, actor, rawSerial)
	if err != nil {
		return nil, err
	}
	mt := access.MaintenanceOn(m)
	if !s.policy.Can(actor, access.Create, mt) {
		return nil, ErrPermissionDenied
	}

	if err := s.applyMaintenance(ctx, in, mt); err != nil {
		return nil, err
	}
	if actor.Role == access.RoleServiceCompany && mt.OrganizationID == nil && mt.ServiceCompanyID == nil {
		id := actor.UserID
		mt.OrganizationID = &id
	}
	if err := s.store.CreateMaintenance(ctx, mt); err != nil {
		return nil, storeError(err, "maintenance")
	}
	return s.maintenanceRow(ctx, actor, mt.ID)
}

// visibleMaintenance loads a record, hiding what actor may not view.
func (s *Service) visibleMaintenance(ctx context.Context, actor access.Actor, id int64) (*model.Maintenance, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	mt, err := s.store.MaintenanceByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "maintenance")
	}
	if !s.policy.Can(actor, access.View, mt) {
		return nil, ErrNotFound
	}
	return mt, nil
}

// GetMaintenance returns one record, for the edit form.
func (s *Service) GetMaintenance(ctx context.Context, actor access.Actor, id int64) (*table.MaintenanceRow, error) {
	mt, err := s.visibleMaintenance(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.Can(actor, access.Edit, mt) {
		return nil, ErrPermissionDenied
	}
	rows := s.maintenanceRows(actor, []model.Maintenance{*mt})
	return &rows[0], nil
}

// UpdateMaintenance edits a record. The edited record must still be one
// actor may edit, so a service company cannot hand a record off.
func (s *Service) UpdateMaintenance(ctx context.Context, actor access.Actor, id int64, in MaintenanceInput) (*table.MaintenanceRow, error) {
	mt, err := s.visibleMaintenance(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.Can(actor, access.Edit, mt) {
		return nil, ErrPermissionDenied
	}

	if err := s.applyMaintenance(ctx, in, mt); err != nil {
		return nil, err
	}
	if !s.policy.Can(actor, access.Edit, mt) {
		return nil, ErrPermissionDenied
	}
	if err := s.store.UpdateMaintenance(ctx, mt); err != nil {
		return nil, storeError(err, "maintenance")
	}
	return s.maintenanceRow(ctx, actor, mt.ID)
}

// DeleteMaintenance removes a record and returns the machine serial it
// belonged to.
func (s *Service) DeleteMaintenance(ctx context.Context, actor access.Actor, id int64) (string, error) {
	mt, err := s.visibleMaintenance(ctx, actor, id)
	if err != nil {
		return "", err
	}
	if !s.policy.Can(actor, access.Delete, mt) {
		return "", ErrPermissionDenied
	}
	if err := s.store.DeleteMaintenance(ctx, mt.ID); err != nil {
		return "", storeError(err, "maintenance")
	}
	return mt.Machine.SerialNumber, nil
}

func (s *Service) maintenanceRow(ctx context.Context, actor access.Actor, id int64) (*table.MaintenanceRow, error) {
	mt, err := s.store.MaintenanceByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "maintenance")
	}
	rows := s.maintenanceRows(actor, []model.Maintenance{*mt})
	return &rows[0], nil
}

// ClaimForm checks that actor may open the claim form for the machine.
func (s *Service) ClaimForm(ctx context.Context, actor access.Actor, rawSerial string) error {
	m, err := s.visibleMachine(ctx, actor, rawSerial)
	if err != nil {
		return err
	}
	if !s.policy.CanOpenClaimForm(actor, m) {
		return ErrPermissionDenied
	}
	return nil
}

// CreateClaim files a claim on the machine. A service company that leaves
// the service company blank is recorded as the one handling the claim.
func (s *Service) CreateClaim(ctx context.Context, actor access.Actor, rawSerial string, in ClaimInput) (*table.ClaimRow, error) {
	m, err := s.visibleMachine(ctx, actor, rawSerial)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanOpenClaimForm(actor, m) {
		return nil, ErrPermissionDenied
	}

	c := access.ClaimOn(m, nil)
	if err := s.applyClaim(ctx, in, c); err != nil {
		return nil, err
	}
	if c.ServiceCompanyID == nil && actor.Role == access.RoleServiceCompany {
		id := actor.UserID
		c.ServiceCompanyID = &id
	}
	if !s.policy.Can(actor, access.Create, c) {
		return nil, ErrPermissionDenied
	}
	if err := s.store.CreateClaim(ctx, c); err != nil {
		return nil, storeError(err, "claim")
	}
	return s.claimRow(ctx, actor, c.ID)
}

func (s *Service) visibleClaim(ctx context.Context, actor access.Actor, id int64) (*model.Claim, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	c, err := s.store.ClaimByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "claim")
	}
	if !s.policy.Can(actor, access.View, c) {
		return nil, ErrNotFound
	}
	return c, nil
}

// claimFor loads a claim for a change. Clients may never change claims, so
// they are refused whether or not they can see the claim.
func (s *Service) claimFor(ctx context.Context, actor access.Actor, id int64, action access.Action) (*model.Claim, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if actor.Role == access.RoleClient {
		if _, err := s.store.ClaimByID(ctx, id); err != nil {
			return nil, storeError(err, "claim")
		}
		return nil, ErrPermissionDenied
	}
	c, err := s.visibleClaim(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.Can(actor, action, c) {
		return nil, ErrPermissionDenied
	}
	return c, nil
}

// GetClaim returns one claim, for the edit form.
func (s *Service) GetClaim(ctx context.Context, actor access.Actor, id int64) (*table.ClaimRow, error) {
	c, err := s.claimFor(ctx, actor, id, access.Edit)
	if err != nil {
		return nil, err
	}
	rows := s.claimRows(actor, []model.Claim{*c})
	return &rows[0], nil
}

// UpdateClaim edits a claim under the same rules as UpdateMaintenance.
func (s *Service) UpdateClaim(ctx context.Context, actor access.Actor, id int64, in ClaimInput) (*table.ClaimRow, error) {
	c, err := s.claimFor(ctx, actor, id, access.Edit)
	if err != nil {
		return nil, err
	}

	if err := s.applyClaim(ctx, in, c); err != nil {
		return nil, err
	}
	if !s.policy.Can(actor, access.Edit, c) {
		return nil, ErrPermissionDenied
	}
	if err := s.store.UpdateClaim(ctx, c); err != nil {
		return nil, storeError(err, "claim")
	}
	return s.claimRow(ctx, actor, c.ID)
}

// DeleteClaim removes a claim and returns its machine serial.
func (s *Service) DeleteClaim(ctx context.Context, actor access.Actor, id int64) (string, error) {
	c, err := s.claimFor(ctx, actor, id, access.Delete)
	if err != nil {
		return "", err
	}
	if err := s.store.DeleteClaim(ctx, c.ID); err != nil {
		return "", storeError(err, "claim")
	}
	return c.Machine.SerialNumber, nil
}

func (s *Service) claimRow(ctx context.Context, actor access.Actor, id int64) (*table.ClaimRow, error) {
	c, err := s.store.ClaimByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "claim")
	}
	rows := s.claimRows(actor, []model.Claim{*c})
	return &rows[0], nil
}
