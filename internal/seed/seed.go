// Package seed loads a YAML fixture of reference data, accounts, machines
// and their records into the store. Fixtures are validated against an
// embedded JSON schema first; loading is idempotent.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/qri-io/jsonschema"
	"gopkg.in/yaml.v3"

	"fleet-records-backend/internal/auth"
	"fleet-records-backend/internal/model"
	"fleet-records-backend/internal/serial"
	"fleet-records-backend/internal/store"
)

const dateLayout = "2006-01-02"

//go:embed schema.json
var schemaJSON []byte

// Lookup is one reference row.
type Lookup struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// User is an account. Passwords are stored hashed.
type User struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Machine refers to lookups by name and to users by email.
type Machine struct {
	SerialNumber       string `json:"serial_number"`
	Model              string `json:"model"`
	EngineModel        string `json:"engine_model"`
	EngineSerial       string `json:"engine_serial"`
	TransmissionModel  string `json:"transmission_model"`
	TransmissionSerial string `json:"transmission_serial"`
	DriveAxleModel     string `json:"drive_axle_model"`
	DriveAxleSerial    string `json:"drive_axle_serial"`
	SteerAxleModel     string `json:"steer_axle_model"`
	SteerAxleSerial    string `json:"steer_axle_serial"`
	ContractNumber     string `json:"contract_number"`
	ContractDate       string `json:"contract_date"`
	ShipmentDate       string `json:"shipment_date"`
	Consignee          string `json:"consignee"`
	OperationAddress   string `json:"operation_address"`
	Options            string `json:"options"`
	Client             string `json:"client"`
	ServiceCompany     string `json:"service_company"`
}

// Maintenance refers to its machine by serial number.
type Maintenance struct {
	Machine        string `json:"machine"`
	Type           string `json:"type"`
	Date           string `json:"date"`
	Hours          int    `json:"hours"`
	OrderNumber    string `json:"order_number"`
	OrderDate      string `json:"order_date"`
	Organization   string `json:"organization"`
	ServiceCompany string `json:"service_company"`
}

// Claim refers to its machine by serial number.
type Claim struct {
	Machine            string `json:"machine"`
	FailureDate        string `json:"failure_date"`
	Hours              int    `json:"hours"`
	FailureNode        string `json:"failure_node"`
	FailureDescription string `json:"failure_description"`
	RecoveryMethod     string `json:"recovery_method"`
	PartsUsed          string `json:"parts_used"`
	RecoveryDate       string `json:"recovery_date"`
	ServiceCompany     string `json:"service_company"`
}

// Fixture is a whole seed file. Lookups are keyed by table slug.
type Fixture struct {
	Lookups     map[string][]Lookup `json:"lookups,omitempty"`
	Users       []User              `json:"users,omitempty"`
	Machines    []Machine           `json:"machines,omitempty"`
	Maintenance []Maintenance       `json:"maintenance,omitempty"`
	Claims      []Claim             `json:"claims,omitempty"`
}

// SchemaError lists every way a fixture breaks the schema.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "fixture does not match schema: " + strings.Join(e.Problems, "; ")
}

// LoadFile reads and validates a fixture from disk.
func LoadFile(ctx context.Context, path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(ctx, data)
}

// Parse decodes YAML (or JSON, which is YAML) and validates it.
func Parse(ctx context.Context, data []byte) (*Fixture, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	raw, err := json.Marshal(plain(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to convert fixture: %w", err)
	}

	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(schemaJSON, rs); err != nil {
		return nil, fmt.Errorf("compile fixture schema: %w", err)
	}
	verrs, err := rs.ValidateBytes(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("validate fixture: %w", err)
	}
	if len(verrs) > 0 {
		se := &SchemaError{}
		for _, v := range verrs {
			se.Problems = append(se.Problems, strings.TrimSpace(v.PropertyPath+" "+v.Message))
		}
		return nil, se
	}

	var f Fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// plain rewrites a decoded YAML tree into JSON-compatible values. Unquoted
// dates come back from YAML as time.Time and are turned back into text.
func plain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = plain(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = plain(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	case time.Time:
		return t.Format(dateLayout)
	default:
		return v
	}
}

// Report counts what a load touched.
type Report struct {
	Lookups     int
	Users       int
	Machines    int
	Maintenance int
	Claims      int
}

// Loader writes fixtures through a store.
type Loader struct {
	store store.Store

	lookups map[string]map[string]int64
	users   map[string]*model.User
}

// NewLoader creates a loader over s.
func NewLoader(s store.Store) *Loader {
	return &Loader{store: s}
}

// Apply loads f. Lookups referenced by name but not listed are created on
// the way; users and machines must be in the fixture or already stored.
// Records that already exist are left alone.
func (l *Loader) Apply(ctx context.Context, f *Fixture) (Report, error) {
	l.lookups = make(map[string]map[string]int64)
	l.users = make(map[string]*model.User)
	var r Report

	for _, k := range store.Kinds() {
		for _, row := range f.Lookups[k.Slug] {
			if _, err := l.lookup(ctx, k, row.Name, row.Description); err != nil {
				return r, err
			}
			r.Lookups++
		}
	}

	if err := l.applyUsers(ctx, f.Users); err != nil {
		return r, err
	}
	r.Users = len(f.Users)

	machines, err := l.machines(ctx, f.Machines)
	if err != nil {
		return r, err
	}
	if err := l.store.UpsertMachines(ctx, machines); err != nil {
		return r, err
	}
	r.Machines = len(machines)

	mts, err := l.maintenance(ctx, f.Maintenance)
	if err != nil {
		return r, err
	}
	if r.Maintenance, err = l.store.AddMaintenanceIfAbsent(ctx, mts); err != nil {
		return r, err
	}

	claims, err := l.claims(ctx, f.Claims)
	if err != nil {
		return r, err
	}
	if r.Claims, err = l.store.AddClaimsIfAbsent(ctx, claims); err != nil {
		return r, err
	}

	log.Printf("Seed loaded: %d lookups, %d users, %d machines, %d new maintenance records, %d new claims",
		r.Lookups, r.Users, r.Machines, r.Maintenance, r.Claims)
	return r, nil
}

func (l *Loader) lookup(ctx context.Context, k store.Kind, name, description string) (int64, error) {
	byName := l.lookups[k.Slug]
	if byName == nil {
		byName = make(map[string]int64)
		l.lookups[k.Slug] = byName
	}
	if id, ok := byName[name]; ok {
		return id, nil
	}
	id, err := l.store.EnsureLookup(ctx, k, name, description)
	if err != nil {
		return 0, err
	}
	byName[name] = id
	return id, nil
}

func (l *Loader) optLookup(ctx context.Context, k store.Kind, name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}
	id, err := l.lookup(ctx, k, name, "")
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (l *Loader) applyUsers(ctx context.Context, users []User) error {
	rows := make([]model.User, 0, len(users))
	for _, u := range users {
		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return err
		}
		rows = append(rows, model.User{Email: u.Email, PasswordHash: hash, Role: u.Role})
	}
	return l.store.UpsertUsers(ctx, rows)
}

// user resolves an email to an account holding role.
func (l *Loader) user(ctx context.Context, email, role string) (*int64, error) {
	if email == "" {
		return nil, nil
	}
	key := strings.ToLower(strings.TrimSpace(email))
	u, ok := l.users[key]
	if !ok {
		var err error
		u, err = l.store.UserByEmail(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("unknown user %q", email)
		}
		if err != nil {
			return nil, err
		}
		l.users[key] = u
	}
	if u.Role != role {
		return nil, fmt.Errorf("user %q has role %q, want %q", email, u.Role, role)
	}
	id := u.ID
	return &id, nil
}

func (l *Loader) machines(ctx context.Context, in []Machine) ([]model.Machine, error) {
	out := make([]model.Machine, 0, len(in))
	for _, m := range in {
		sn, err := serial.Normalize(m.SerialNumber)
		if err != nil {
			return nil, fmt.Errorf("machine %q: %w", m.SerialNumber, err)
		}
		row := model.Machine{
			SerialNumber:       sn,
			EngineSerial:       m.EngineSerial,
			TransmissionSerial: m.TransmissionSerial,
			DriveAxleSerial:    m.DriveAxleSerial,
			SteerAxleSerial:    m.SteerAxleSerial,
			ContractNumber:     m.ContractNumber,
			Consignee:          m.Consignee,
			OperationAddress:   m.OperationAddress,
			Options:            m.Options,
		}
		if row.ModelID, err = l.lookup(ctx, store.MachineModels, m.Model, ""); err != nil {
			return nil, err
		}
		refs := []struct {
			dst  **int64
			kind store.Kind
			name string
		}{
			{&row.EngineModelID, store.EngineModels, m.EngineModel},
			{&row.TransmissionModelID, store.TransmissionModels, m.TransmissionModel},
			{&row.DriveAxleModelID, store.DriveAxleModels, m.DriveAxleModel},
			{&row.SteerAxleModelID, store.SteerAxleModels, m.SteerAxleModel},
		}
		for _, ref := range refs {
			if *ref.dst, err = l.optLookup(ctx, ref.kind, ref.name); err != nil {
				return nil, err
			}
		}
		if row.ContractDate, err = optDate(m.ContractDate); err != nil {
			return nil, fmt.Errorf("machine %s: %w", sn, err)
		}
		if row.ShipmentDate, err = optDate(m.ShipmentDate); err != nil {
			return nil, fmt.Errorf("machine %s: %w", sn, err)
		}
		if row.ClientID, err = l.user(ctx, m.Client, model.RoleClient); err != nil {
			return nil, fmt.Errorf("machine %s: %w", sn, err)
		}
		if row.ServiceCompanyID, err = l.user(ctx, m.ServiceCompany, model.RoleServiceCompany); err != nil {
			return nil, fmt.Errorf("machine %s: %w", sn, err)
		}
		out = append(out, row)
	}
	return out, nil
}

// machineID re-reads the id by serial, since upserts do not report ids of
// rows that already existed.
func (l *Loader) machineID(ctx context.Context, raw string) (int64, error) {
	m, err := l.store.MachineBySerial(ctx, serial.Canonical(raw))
	if errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("unknown machine %q", raw)
	}
	if err != nil {
		return 0, err
	}
	return m.ID, nil
}

func (l *Loader) maintenance(ctx context.Context, in []Maintenance) ([]model.Maintenance, error) {
	out := make([]model.Maintenance, 0, len(in))
	for _, mt := range in {
		machineID, err := l.machineID(ctx, mt.Machine)
		if err != nil {
			return nil, err
		}
		row := model.Maintenance{MachineID: machineID, Hours: mt.Hours, OrderNumber: mt.OrderNumber}
		if row.TypeID, err = l.lookup(ctx, store.MaintenanceTypes, mt.Type, ""); err != nil {
			return nil, err
		}
		if row.Date, err = time.Parse(dateLayout, mt.Date); err != nil {
			return nil, fmt.Errorf("maintenance on %s: %w", mt.Machine, err)
		}
		if row.OrderDate, err = optDate(mt.OrderDate); err != nil {
			return nil, fmt.Errorf("maintenance on %s: %w", mt.Machine, err)
		}
		if row.OrganizationID, err = l.user(ctx, mt.Organization, model.RoleServiceCompany); err != nil {
			return nil, fmt.Errorf("maintenance on %s: %w", mt.Machine, err)
		}
		if row.ServiceCompanyID, err = l.user(ctx, mt.ServiceCompany, model.RoleServiceCompany); err != nil {
			return nil, fmt.Errorf("maintenance on %s: %w", mt.Machine, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func (l *Loader) claims(ctx context.Context, in []Claim) ([]model.Claim, error) {
	out := make([]model.Claim, 0, len(in))
	for _, c := range in {
		machineID, err := l.machineID(ctx, c.Machine)
		if err != nil {
			return nil, err
		}
		row := model.Claim{
			MachineID:          machineID,
			Hours:              c.Hours,
			FailureDescription: c.FailureDescription,
			PartsUsed:          c.PartsUsed,
		}
		if row.FailureNodeID, err = l.lookup(ctx, store.FailureNodes, c.FailureNode, ""); err != nil {
			return nil, err
		}
		if row.RecoveryMethodID, err = l.lookup(ctx, store.RecoveryMethods, c.RecoveryMethod, ""); err != nil {
			return nil, err
		}
		if row.FailureDate, err = time.Parse(dateLayout, c.FailureDate); err != nil {
			return nil, fmt.Errorf("claim on %s: %w", c.Machine, err)
		}
		if row.RecoveryDate, err = optDate(c.RecoveryDate); err != nil {
			return nil, fmt.Errorf("claim on %s: %w", c.Machine, err)
		}
		if row.RecoveryDate != nil && row.RecoveryDate.Before(row.FailureDate) {
			return nil, fmt.Errorf("claim on %s: recovery date before failure date", c.Machine)
		}
		if row.ServiceCompanyID, err = l.user(ctx, c.ServiceCompany, model.RoleServiceCompany); err != nil {
			return nil, fmt.Errorf("claim on %s: %w", c.Machine, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func optDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
