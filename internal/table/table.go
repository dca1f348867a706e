// Package table turns already-scoped records into the rows the dashboard
// renders. It resolves references to display values and nothing else;
// which records appear is decided before they get here.
package table

import (
	"time"

	"fleet-records-backend/internal/model"
)

const dateLayout = "2006-01-02"

// MaxPage is the highest page number a listing serves.
const MaxPage = 100000

// Page is one page of a listing.
type Page[T any] struct {
	Rows    []T   `json:"rows"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
}

// NewPage wraps rows with paging metadata. An empty listing has one page.
func NewPage[T any](rows []T, page, perPage int, total int64) Page[T] {
	if rows == nil {
		rows = []T{}
	}
	pages := 1
	if perPage > 0 && total > 0 {
		pages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Page[T]{Rows: rows, Page: page, PerPage: perPage, Total: total, Pages: pages}
}

// Offset is the number of rows before the given 1-based page. Pages past
// MaxPage are read as MaxPage.
func Offset(page, perPage int) int {
	if page < 1 {
		return 0
	}
	if page > MaxPage {
		page = MaxPage
	}
	return (page - 1) * perPage
}

// Caps are the per-row actions the actor may take.
type Caps struct {
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

func date(t time.Time) string {
	return t.Format(dateLayout)
}

func optDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func optID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

// MachineRow is a machine with every reference resolved.
type MachineRow struct {
	ID                 int64  `json:"id"`
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
	ClientID           int64  `json:"client_id,omitempty"`
	ServiceCompany     string `json:"service_company"`
	ServiceCompanyID   int64  `json:"service_company_id,omitempty"`
	Caps
}

// Machine builds the row for m.
func Machine(m *model.Machine, caps Caps) MachineRow {
	return MachineRow{
		ID:                 m.ID,
		SerialNumber:       m.SerialNumber,
		Model:              m.Model.Label(),
		EngineModel:        label(m.EngineModel),
		EngineSerial:       m.EngineSerial,
		TransmissionModel:  label(m.TransmissionModel),
		TransmissionSerial: m.TransmissionSerial,
		DriveAxleModel:     label(m.DriveAxleModel),
		DriveAxleSerial:    m.DriveAxleSerial,
		SteerAxleModel:     label(m.SteerAxleModel),
		SteerAxleSerial:    m.SteerAxleSerial,
		ContractNumber:     m.ContractNumber,
		ContractDate:       optDate(m.ContractDate),
		ShipmentDate:       optDate(m.ShipmentDate),
		Consignee:          m.Consignee,
		OperationAddress:   m.OperationAddress,
		Options:            m.Options,
		Client:             m.Client.Label(),
		ClientID:           optID(m.ClientID),
		ServiceCompany:     m.ServiceCompany.Label(),
		ServiceCompanyID:   optID(m.ServiceCompanyID),
		Caps:               caps,
	}
}

// PublicMachine is what anyone may learn from a serial number.
type PublicMachine struct {
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
}

// Public builds the public view of m.
func Public(m *model.Machine) PublicMachine {
	return PublicMachine{
		SerialNumber:       m.SerialNumber,
		Model:              m.Model.Label(),
		EngineModel:        label(m.EngineModel),
		EngineSerial:       m.EngineSerial,
		TransmissionModel:  label(m.TransmissionModel),
		TransmissionSerial: m.TransmissionSerial,
		DriveAxleModel:     label(m.DriveAxleModel),
		DriveAxleSerial:    m.DriveAxleSerial,
		SteerAxleModel:     label(m.SteerAxleModel),
		SteerAxleSerial:    m.SteerAxleSerial,
	}
}

// MaintenanceRow is a maintenance record with references resolved.
type MaintenanceRow struct {
	ID             int64  `json:"id"`
	MachineSerial  string `json:"machine_serial"`
	Type           string `json:"type"`
	Date           string `json:"date"`
	Hours          int    `json:"hours"`
	OrderNumber    string `json:"order_number"`
	OrderDate      string `json:"order_date"`
	Organization   string `json:"organization"`
	ServiceCompany string `json:"service_company"`
	Caps
}

// Maintenance builds the row for mt. The machine must be loaded.
func Maintenance(mt *model.Maintenance, caps Caps) MaintenanceRow {
	return MaintenanceRow{
		ID:             mt.ID,
		MachineSerial:  mt.Machine.SerialNumber,
		Type:           mt.Type.Label(),
		Date:           date(mt.Date),
		Hours:          mt.Hours,
		OrderNumber:    mt.OrderNumber,
		OrderDate:      optDate(mt.OrderDate),
		Organization:   mt.Organization.Label(),
		ServiceCompany: mt.ServiceCompany.Label(),
		Caps:           caps,
	}
}

// ClaimRow is a claim with references resolved and downtime computed.
type ClaimRow struct {
	ID                 int64  `json:"id"`
	MachineSerial      string `json:"machine_serial"`
	FailureDate        string `json:"failure_date"`
	Hours              int    `json:"hours"`
	FailureNode        string `json:"failure_node"`
	FailureDescription string `json:"failure_description"`
	RecoveryMethod     string `json:"recovery_method"`
	PartsUsed          string `json:"parts_used"`
	RecoveryDate       string `json:"recovery_date"`
	Downtime           *int   `json:"downtime"`
	ServiceCompany     string `json:"service_company"`
	Caps
}

// Claim builds the row for c. The machine must be loaded.
func Claim(c *model.Claim, caps Caps) ClaimRow {
	return ClaimRow{
		ID:                 c.ID,
		MachineSerial:      c.Machine.SerialNumber,
		FailureDate:        date(c.FailureDate),
		Hours:              c.Hours,
		FailureNode:        c.FailureNode.Label(),
		FailureDescription: c.FailureDescription,
		RecoveryMethod:     c.RecoveryMethod.Label(),
		PartsUsed:          c.PartsUsed,
		RecoveryDate:       optDate(c.RecoveryDate),
		Downtime:           c.Downtime(),
		ServiceCompany:     c.ServiceCompany.Label(),
		Caps:               caps,
	}
}

type labeled interface {
	Label() string
}

// label resolves an optional lookup reference; nil yields "".
func label[T any, P interface {
	*T
	labeled
}](p P) string {
	if p == nil {
		return ""
	}
	return p.Label()
}
