// Package fleet is the application layer: it combines role scoping,
// filters, the access policy and input validation around the store. Every
// operation takes the acting identity explicitly.
package fleet

import (
	"time"

	"github.com/go-playground/validator/v10"

	"fleet-records-backend/config"
	"fleet-records-backend/internal/access"
	"fleet-records-backend/internal/export"
	"fleet-records-backend/internal/store"
	"fleet-records-backend/internal/table"
)

// Options configures a Service. Zero page sizes fall back to 20/15/15.
type Options struct {
	Policy             access.Policy
	MachinesPerPage    int
	MaintenancePerPage int
	ClaimsPerPage      int
	ExportColumns      []string
}

// OptionsFrom builds Options from a loaded configuration.
func OptionsFrom(cfg *config.Config) Options {
	policy := access.DefaultPolicy()
	if cfg.Policy.ClientManagesMaintenance != nil {
		policy.ClientManagesMaintenance = *cfg.Policy.ClientManagesMaintenance
	}
	return Options{
		Policy:             policy,
		MachinesPerPage:    cfg.Listing.MachinesPerPage,
		MaintenancePerPage: cfg.Listing.MaintenancePerPage,
		ClaimsPerPage:      cfg.Listing.ClaimsPerPage,
		ExportColumns:      cfg.Export.MachineColumns,
	}
}

// Service implements every fleet operation.
type Service struct {
	store     store.Store
	policy    access.Policy
	opts      Options
	validator *validator.Validate
	now       func() time.Time
}

// NewService creates a Service. It fails only on an unusable export
// column list.
func NewService(s store.Store, opts Options) (*Service, error) {
	if opts.MachinesPerPage <= 0 {
		opts.MachinesPerPage = 20
	}
	if opts.MaintenancePerPage <= 0 {
		opts.MaintenancePerPage = 15
	}
	if opts.ClaimsPerPage <= 0 {
		opts.ClaimsPerPage = 15
	}
	if len(opts.ExportColumns) == 0 {
		opts.ExportColumns = export.DefaultMachineColumns
	}
	if err := export.CheckColumns(opts.ExportColumns); err != nil {
		return nil, err
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	v.RegisterTagNameFunc(FieldName)

	return &Service{
		store:     s,
		policy:    opts.Policy,
		opts:      opts,
		validator: v,
		now:       time.Now,
	}, nil
}

// Policy returns the access policy in force.
func (s *Service) Policy() access.Policy {
	return s.policy
}

func (s *Service) validate(in any) error {
	return BindingError(s.validator.Struct(in))
}

func requireActor(actor access.Actor) error {
	if !actor.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func (s *Service) requireManager(actor access.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.Role != access.RoleManager {
		return ErrPermissionDenied
	}
	return nil
}

func window(page, perPage int) store.Window {
	return store.Window{Limit: perPage, Offset: table.Offset(page, perPage)}
}
