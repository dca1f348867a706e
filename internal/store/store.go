package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fleet-records-backend/internal/model"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("duplicate key")
	ErrInUse        = errors.New("record is still referenced")
	ErrBadReference = errors.New("referenced record does not exist")
)

// Scope narrows a query; role scopes and filters are both Scopes.
type Scope = func(*gorm.DB) *gorm.DB

// Window selects a slice of an ordered result. A zero Limit means no limit.
type Window struct {
	Limit  int
	Offset int
}

// Store defines the interface for all database operations.
type Store interface {
	ListMachines(ctx context.Context, w Window, scopes ...Scope) ([]model.Machine, int64, error)
	MachineBySerial(ctx context.Context, serialNumber string) (*model.Machine, error)
	CreateMachine(ctx context.Context, m *model.Machine) error
	UpdateMachine(ctx context.Context, m *model.Machine) error
	DeleteMachine(ctx context.Context, id int64) error

	ListMaintenance(ctx context.Context, w Window, scopes ...Scope) ([]model.Maintenance, int64, error)
	MaintenanceByID(ctx context.Context, id int64) (*model.Maintenance, error)
	CreateMaintenance(ctx context.Context, mt *model.Maintenance) error
	UpdateMaintenance(ctx context.Context, mt *model.Maintenance) error
	DeleteMaintenance(ctx context.Context, id int64) error

	ListClaims(ctx context.Context, w Window, scopes ...Scope) ([]model.Claim, int64, error)
	ClaimByID(ctx context.Context, id int64) (*model.Claim, error)
	CreateClaim(ctx context.Context, c *model.Claim) error
	UpdateClaim(ctx context.Context, c *model.Claim) error
	DeleteClaim(ctx context.Context, id int64) error

	ListLookups(ctx context.Context, kind Kind) ([]model.Directory, error)
	LookupByID(ctx context.Context, kind Kind, id int64) (*model.Directory, error)
	CreateLookup(ctx context.Context, kind Kind, d *model.Directory) error
	UpdateLookup(ctx context.Context, kind Kind, d *model.Directory) error
	DeleteLookup(ctx context.Context, kind Kind, id int64) error
	EnsureLookup(ctx context.Context, kind Kind, name, description string) (int64, error)

	CreateUser(ctx context.Context, u *model.User) error
	UserByID(ctx context.Context, id int64) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, role string) ([]model.User, error)

	UpsertUsers(ctx context.Context, users []model.User) error
	UpsertMachines(ctx context.Context, machines []model.Machine) error
	AddMaintenanceIfAbsent(ctx context.Context, records []model.Maintenance) (int, error)
	AddClaimsIfAbsent(ctx context.Context, records []model.Claim) (int, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// translate maps gorm and driver errors onto the store's sentinels. The
// connection must be opened with TranslateError for constraint errors to
// arrive as gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated.
func translate(err error, onForeignKey error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return onForeignKey
	default:
		return err
	}
}

func (s *gormStore) page(q *gorm.DB, w Window) *gorm.DB {
	if w.Limit > 0 {
		q = q.Limit(w.Limit)
	}
	if w.Offset > 0 {
		q = q.Offset(w.Offset)
	}
	return q
}
