package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-records-backend/internal/model"
)

func preloadMachine(q *gorm.DB) *gorm.DB {
	return q.Preload("Model").
		Preload("EngineModel").
		Preload("TransmissionModel").
		Preload("DriveAxleModel").
		Preload("SteerAxleModel").
		Preload("Client").
		Preload("ServiceCompany")
}

func (s *gormStore) ListMachines(ctx context.Context, w Window, scopes ...Scope) ([]model.Machine, int64, error) {
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&model.Machine{}).Scopes(scopes...)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count machines: %w", err)
	}

	var rows []model.Machine
	q := preloadMachine(s.page(base().Order(model.MachineOrder), w))
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list machines: %w", err)
	}
	return rows, total, nil
}

// MachineBySerial expects the canonical (upper-case) serial.
func (s *gormStore) MachineBySerial(ctx context.Context, serialNumber string) (*model.Machine, error) {
	var m model.Machine
	err := preloadMachine(s.db.WithContext(ctx)).Where("serial_number = ?", serialNumber).Take(&m).Error
	if err != nil {
		return nil, translate(err, err)
	}
	return &m, nil
}

func (s *gormStore) CreateMachine(ctx context.Context, m *model.Machine) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
	return translate(err, ErrBadReference)
}

func (s *gormStore) UpdateMachine(ctx context.Context, m *model.Machine) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error
	return translate(err, ErrBadReference)
}

// DeleteMachine removes the machine together with its maintenance records
// and claims.
func (s *gormStore) DeleteMachine(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("machine_id = ?", id).Delete(&model.Maintenance{}).Error; err != nil {
			return fmt.Errorf("delete maintenance of machine %d: %w", id, err)
		}
		if err := tx.Where("machine_id = ?", id).Delete(&model.Claim{}).Error; err != nil {
			return fmt.Errorf("delete claims of machine %d: %w", id, err)
		}
		res := tx.Delete(&model.Machine{}, id)
		if res.Error != nil {
			return translate(res.Error, ErrInUse)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
