package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-records-backend/internal/model"
)

func preloadMaintenance(q *gorm.DB) *gorm.DB {
	return q.Preload("Machine").
		Preload("Type").
		Preload("Organization").
		Preload("ServiceCompany")
}

func preloadClaim(q *gorm.DB) *gorm.DB {
	return q.Preload("Machine").
		Preload("FailureNode").
		Preload("RecoveryMethod").
		Preload("ServiceCompany")
}

func (s *gormStore) ListMaintenance(ctx context.Context, w Window, scopes ...Scope) ([]model.Maintenance, int64, error) {
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&model.Maintenance{}).Scopes(scopes...)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count maintenance: %w", err)
	}

	var rows []model.Maintenance
	if err := preloadMaintenance(s.page(base().Order(model.MaintenanceOrder), w)).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list maintenance: %w", err)
	}
	return rows, total, nil
}

func (s *gormStore) MaintenanceByID(ctx context.Context, id int64) (*model.Maintenance, error) {
	var mt model.Maintenance
	if err := preloadMaintenance(s.db.WithContext(ctx)).Take(&mt, id).Error; err != nil {
		return nil, translate(err, err)
	}
	return &mt, nil
}

func (s *gormStore) CreateMaintenance(ctx context.Context, mt *model.Maintenance) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(mt).Error, ErrBadReference)
}

func (s *gormStore) UpdateMaintenance(ctx context.Context, mt *model.Maintenance) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(mt).Error, ErrBadReference)
}

func (s *gormStore) DeleteMaintenance(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Maintenance{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) ListClaims(ctx context.Context, w Window, scopes ...Scope) ([]model.Claim, int64, error) {
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&model.Claim{}).Scopes(scopes...)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count claims: %w", err)
	}

	var rows []model.Claim
	if err := preloadClaim(s.page(base().Order(model.ClaimOrder), w)).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list claims: %w", err)
	}
	return rows, total, nil
}

func (s *gormStore) ClaimByID(ctx context.Context, id int64) (*model.Claim, error) {
	var c model.Claim
	if err := preloadClaim(s.db.WithContext(ctx)).Take(&c, id).Error; err != nil {
		return nil, translate(err, err)
	}
	return &c, nil
}

func (s *gormStore) CreateClaim(ctx context.Context, c *model.Claim) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error, ErrBadReference)
}

func (s *gormStore) UpdateClaim(ctx context.Context, c *model.Claim) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error, ErrBadReference)
}

func (s *gormStore) DeleteClaim(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Claim{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
