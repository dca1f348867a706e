package store

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-records-backend/internal/model"
)

// UpsertUsers inserts users keyed by email, refreshing role and password
// of accounts that already exist.
func (s *gormStore) UpsertUsers(ctx context.Context, users []model.User) error {
	if len(users) == 0 {
		return nil
	}
	for i := range users {
		users[i].Email = strings.ToLower(strings.TrimSpace(users[i].Email))
	}
	log.Printf("Batch upserting %d users...", len(users))
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "password_hash", "updated_at"}),
	}).Create(&users).Error
	if err != nil {
		return fmt.Errorf("batch upsert users failed: %w", translate(err, ErrBadReference))
	}
	return nil
}

// UpsertMachines inserts machines keyed by serial number and overwrites
// every descriptive column of the ones that already exist.
func (s *gormStore) UpsertMachines(ctx context.Context, machines []model.Machine) error {
	if len(machines) == 0 {
		return nil
	}
	log.Printf("Batch upserting %d machines...", len(machines))
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "serial_number"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"model_id", "engine_model_id", "engine_serial",
				"transmission_model_id", "transmission_serial",
				"drive_axle_model_id", "drive_axle_serial",
				"steer_axle_model_id", "steer_axle_serial",
				"contract_number", "contract_date", "shipment_date",
				"consignee", "operation_address", "options",
				"client_id", "service_company_id", "updated_at",
			}),
		}).Create(&machines).Error
		if err != nil {
			return fmt.Errorf("batch upsert machines failed: %w", translate(err, ErrBadReference))
		}
		return nil
	})
}

// AddMaintenanceIfAbsent creates each record unless one with the same
// machine, type and date already exists. It returns how many were created.
func (s *gormStore) AddMaintenanceIfAbsent(ctx context.Context, records []model.Maintenance) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range records {
			r := &records[i]
			var n int64
			if err := tx.Model(&model.Maintenance{}).
				Where("machine_id = ? AND type_id = ? AND date = ?", r.MachineID, r.TypeID, r.Date).
				Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			if err := tx.Omit(clause.Associations).Create(r).Error; err != nil {
				return fmt.Errorf("create maintenance for machine %d: %w", r.MachineID, translate(err, ErrBadReference))
			}
			created++
		}
		return nil
	})
	return created, err
}

// AddClaimsIfAbsent creates each claim unless one with the same machine,
// failure node and failure date already exists.
func (s *gormStore) AddClaimsIfAbsent(ctx context.Context, records []model.Claim) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range records {
			r := &records[i]
			var n int64
			if err := tx.Model(&model.Claim{}).
				Where("machine_id = ? AND failure_node_id = ? AND failure_date = ?", r.MachineID, r.FailureNodeID, r.FailureDate).
				Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			if err := tx.Omit(clause.Associations).Create(r).Error; err != nil {
				return fmt.Errorf("create claim for machine %d: %w", r.MachineID, translate(err, ErrBadReference))
			}
			created++
		}
		return nil
	})
	return created, err
}
