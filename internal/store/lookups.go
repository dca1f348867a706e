package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"fleet-records-backend/internal/model"
)

type reference struct {
	table  string
	column string
}

// Kind is one reference table. Slug doubles as the table name and the
// URL segment.
type Kind struct {
	Slug  string
	Title string
	refs  []reference
}

var kinds = []Kind{
	{Slug: "machine_models", Title: "Machine model", refs: []reference{{"machines", "model_id"}}},
	{Slug: "engine_models", Title: "Engine model", refs: []reference{{"machines", "engine_model_id"}}},
	{Slug: "transmission_models", Title: "Transmission model", refs: []reference{{"machines", "transmission_model_id"}}},
	{Slug: "drive_axle_models", Title: "Drive axle model", refs: []reference{{"machines", "drive_axle_model_id"}}},
	{Slug: "steer_axle_models", Title: "Steer axle model", refs: []reference{{"machines", "steer_axle_model_id"}}},
	{Slug: "maintenance_types", Title: "Maintenance type", refs: []reference{{"maintenances", "type_id"}}},
	{Slug: "failure_nodes", Title: "Failure node", refs: []reference{{"claims", "failure_node_id"}}},
	{Slug: "recovery_methods", Title: "Recovery method", refs: []reference{{"claims", "recovery_method_id"}}},
}

// Named kinds, for callers that need a specific table.
var (
	MachineModels      = kinds[0]
	EngineModels       = kinds[1]
	TransmissionModels = kinds[2]
	DriveAxleModels    = kinds[3]
	SteerAxleModels    = kinds[4]
	MaintenanceTypes   = kinds[5]
	FailureNodes       = kinds[6]
	RecoveryMethods    = kinds[7]
)

// Kinds returns every reference table in display order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// KindOf resolves a slug.
func KindOf(slug string) (Kind, bool) {
	for _, k := range kinds {
		if k.Slug == slug {
			return k, true
		}
	}
	return Kind{}, false
}

func (s *gormStore) ListLookups(ctx context.Context, kind Kind) ([]model.Directory, error) {
	var rows []model.Directory
	err := s.db.WithContext(ctx).Table(kind.Slug).Order("name ASC, id ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Slug, err)
	}
	return rows, nil
}

func (s *gormStore) LookupByID(ctx context.Context, kind Kind, id int64) (*model.Directory, error) {
	var d model.Directory
	if err := s.db.WithContext(ctx).Table(kind.Slug).Where("id = ?", id).Take(&d).Error; err != nil {
		return nil, translate(err, err)
	}
	return &d, nil
}

func (s *gormStore) CreateLookup(ctx context.Context, kind Kind, d *model.Directory) error {
	return translate(s.db.WithContext(ctx).Table(kind.Slug).Create(d).Error, ErrBadReference)
}

func (s *gormStore) UpdateLookup(ctx context.Context, kind Kind, d *model.Directory) error {
	res := s.db.WithContext(ctx).Table(kind.Slug).Where("id = ?", d.ID).
		Updates(map[string]any{"name": d.Name, "description": d.Description})
	if res.Error != nil {
		return translate(res.Error, ErrBadReference)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteLookup refuses with ErrInUse while any record still points at the
// row. The count and the delete share a transaction; the RESTRICT foreign
// keys catch anything that slips in between.
func (s *gormStore) DeleteLookup(ctx context.Context, kind Kind, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ref := range kind.refs {
			var n int64
			if err := tx.Table(ref.table).Where(ref.column+" = ?", id).Count(&n).Error; err != nil {
				return fmt.Errorf("count %s.%s: %w", ref.table, ref.column, err)
			}
			if n > 0 {
				return ErrInUse
			}
		}
		res := tx.Exec("DELETE FROM "+kind.Slug+" WHERE id = ?", id)
		if res.Error != nil {
			return translate(res.Error, ErrInUse)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// EnsureLookup returns the id of the row with the given name, creating it
// when missing.
func (s *gormStore) EnsureLookup(ctx context.Context, kind Kind, name, description string) (int64, error) {
	var d model.Directory
	err := s.db.WithContext(ctx).Table(kind.Slug).Where("name = ?", name).Order("id").Take(&d).Error
	switch {
	case err == nil:
		return d.ID, nil
	case translate(err, err) != ErrNotFound:
		return 0, err
	}
	d = model.Directory{Name: name, Description: description}
	if err := s.CreateLookup(ctx, kind, &d); err != nil {
		return 0, fmt.Errorf("create %s %q: %w", kind.Slug, name, err)
	}
	return d.ID, nil
}
