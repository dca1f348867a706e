package fleet

import (
	"context"
	"errors"
	"time"

	"fleet-records-backend/internal/model"
	"fleet-records-backend/internal/serial"
	"fleet-records-backend/internal/store"
)

const dateLayout = "2006-01-02"

// MachineInput is the machine form. Reference fields carry ids; a zero or
// missing optional id clears the reference.
type MachineInput struct {
	SerialNumber       string `json:"serial_number" form:"serial_number" binding:"required,max=100"`
	Model              int64  `json:"model" form:"model" binding:"required,min=1"`
	EngineModel        *int64 `json:"engine_model" form:"engine_model" binding:"omitempty,min=0"`
	EngineSerial       string `json:"engine_serial" form:"engine_serial" binding:"max=100"`
	TransmissionModel  *int64 `json:"transmission_model" form:"transmission_model" binding:"omitempty,min=0"`
	TransmissionSerial string `json:"transmission_serial" form:"transmission_serial" binding:"max=100"`
	DriveAxleModel     *int64 `json:"drive_axle_model" form:"drive_axle_model" binding:"omitempty,min=0"`
	DriveAxleSerial    string `json:"drive_axle_serial" form:"drive_axle_serial" binding:"max=100"`
	SteerAxleModel     *int64 `json:"steer_axle_model" form:"steer_axle_model" binding:"omitempty,min=0"`
	SteerAxleSerial    string `json:"steer_axle_serial" form:"steer_axle_serial" binding:"max=100"`
	ContractNumber     string `json:"contract_number" form:"contract_number" binding:"max=100"`
	ContractDate       string `json:"contract_date" form:"contract_date" binding:"omitempty,datetime=2006-01-02"`
	ShipmentDate       string `json:"shipment_date" form:"shipment_date" binding:"omitempty,datetime=2006-01-02"`
	Consignee          string `json:"consignee" form:"consignee" binding:"max=300"`
	OperationAddress   string `json:"operation_address" form:"operation_address" binding:"max=500"`
	Options            string `json:"options" form:"options"`
	Client             *int64 `json:"client" form:"client" binding:"omitempty,min=0"`
	ServiceCompany     *int64 `json:"service_company" form:"service_company" binding:"omitempty,min=0"`
}

// MaintenanceInput is the maintenance form; the machine comes from the URL.
type MaintenanceInput struct {
	Type           int64  `json:"type" form:"type" binding:"required,min=1"`
	Date           string `json:"date" form:"date" binding:"required,datetime=2006-01-02"`
	Hours          int    `json:"hours" form:"hours" binding:"min=0"`
	OrderNumber    string `json:"order_number" form:"order_number" binding:"max=100"`
	OrderDate      string `json:"order_date" form:"order_date" binding:"omitempty,datetime=2006-01-02"`
	Organization   *int64 `json:"organization" form:"organization" binding:"omitempty,min=0"`
	ServiceCompany *int64 `json:"service_company" form:"service_company" binding:"omitempty,min=0"`
}

// ClaimInput is the claim form; the machine comes from the URL.
type ClaimInput struct {
	FailureDate        string `json:"failure_date" form:"failure_date" binding:"required,datetime=2006-01-02"`
	Hours              int    `json:"hours" form:"hours" binding:"min=0"`
	FailureNode        int64  `json:"failure_node" form:"failure_node" binding:"required,min=1"`
	FailureDescription string `json:"failure_description" form:"failure_description"`
	RecoveryMethod     int64  `json:"recovery_method" form:"recovery_method" binding:"required,min=1"`
	PartsUsed          string `json:"parts_used" form:"parts_used"`
	RecoveryDate       string `json:"recovery_date" form:"recovery_date" binding:"omitempty,datetime=2006-01-02"`
	ServiceCompany     *int64 `json:"service_company" form:"service_company" binding:"omitempty,min=0"`
}

// LookupInput is a reference table row.
type LookupInput struct {
	Name        string `json:"name" form:"name" binding:"required,max=200"`
	Description string `json:"description" form:"description"`
}

// UserInput creates an account.
type UserInput struct {
	Email    string `json:"email" form:"email" binding:"required,email,max=254"`
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" form:"role" binding:"omitempty,oneof=manager client service_company"`
}

func ref(id *int64) *int64 {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}

func parseDate(v *ValidationError, field, value string) time.Time {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		v.add(field, "must be a date in YYYY-MM-DD format")
	}
	return t
}

func parseOptDate(v *ValidationError, field, value string) *time.Time {
	if value == "" {
		return nil
	}
	t := parseDate(v, field, value)
	return &t
}

// checks resolves references on behalf of input validation.
type checks struct {
	ctx   context.Context
	store store.Store
	v     *ValidationError
	err   error
}

func (c *checks) lookup(field string, kind store.Kind, id *int64) {
	if id == nil || c.err != nil {
		return
	}
	_, err := c.store.LookupByID(c.ctx, kind, *id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.v.add(field, "unknown "+kind.Title)
	case err != nil:
		c.err = err
	}
}

func (c *checks) user(field, role string, id *int64) {
	if id == nil || c.err != nil {
		return
	}
	u, err := c.store.UserByID(c.ctx, *id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.v.add(field, "unknown user")
	case err != nil:
		c.err = err
	case u.Role != role:
		c.v.add(field, "user must have the "+role+" role")
	}
}

// result reports an infrastructure failure before any field errors.
func (c *checks) result() error {
	if c.err != nil {
		return c.err
	}
	return c.v.err()
}

func (s *Service) checker(ctx context.Context) *checks {
	return &checks{ctx: ctx, store: s.store, v: &ValidationError{}}
}

// applyMachine validates in and copies it onto m.
func (s *Service) applyMachine(ctx context.Context, in MachineInput, m *model.Machine) error {
	if err := s.validate(in); err != nil {
		return err
	}
	c := s.checker(ctx)

	sn, err := serial.Normalize(in.SerialNumber)
	if err != nil {
		c.v.add("serial_number", err.Error())
	}
	modelID := in.Model
	c.lookup("model", store.MachineModels, &modelID)
	c.lookup("engine_model", store.EngineModels, ref(in.EngineModel))
	c.lookup("transmission_model", store.TransmissionModels, ref(in.TransmissionModel))
	c.lookup("drive_axle_model", store.DriveAxleModels, ref(in.DriveAxleModel))
	c.lookup("steer_axle_model", store.SteerAxleModels, ref(in.SteerAxleModel))
	c.user("client", model.RoleClient, ref(in.Client))
	c.user("service_company", model.RoleServiceCompany, ref(in.ServiceCompany))
	contractDate := parseOptDate(c.v, "contract_date", in.ContractDate)
	shipmentDate := parseOptDate(c.v, "shipment_date", in.ShipmentDate)
	if err := c.result(); err != nil {
		return err
	}

	m.SerialNumber = sn
	m.ModelID = in.Model
	m.EngineModelID = ref(in.EngineModel)
	m.EngineSerial = in.EngineSerial
	m.TransmissionModelID = ref(in.TransmissionModel)
	m.TransmissionSerial = in.TransmissionSerial
	m.DriveAxleModelID = ref(in.DriveAxleModel)
	m.DriveAxleSerial = in.DriveAxleSerial
	m.SteerAxleModelID = ref(in.SteerAxleModel)
	m.SteerAxleSerial = in.SteerAxleSerial
	m.ContractNumber = in.ContractNumber
	m.ContractDate = contractDate
	m.ShipmentDate = shipmentDate
	m.Consignee = in.Consignee
	m.OperationAddress = in.OperationAddress
	m.Options = in.Options
	m.ClientID = ref(in.Client)
	m.ServiceCompanyID = ref(in.ServiceCompany)
	return nil
}

// applyMaintenance validates in and copies it onto mt.
func (s *Service) applyMaintenance(ctx context.Context, in MaintenanceInput, mt *model.Maintenance) error {
	if err := s.validate(in); err != nil {
		return err
	}
	c := s.checker(ctx)

	typeID := in.Type
	c.lookup("type", store.MaintenanceTypes, &typeID)
	c.user("organization", model.RoleServiceCompany, ref(in.Organization))
	c.user("service_company", model.RoleServiceCompany, ref(in.ServiceCompany))
	date := parseDate(c.v, "date", in.Date)
	orderDate := parseOptDate(c.v, "order_date", in.OrderDate)
	if err := c.result(); err != nil {
		return err
	}

	mt.TypeID = in.Type
	mt.Date = date
	mt.Hours = in.Hours
	mt.OrderNumber = in.OrderNumber
	mt.OrderDate = orderDate
	mt.OrganizationID = ref(in.Organization)
	mt.ServiceCompanyID = ref(in.ServiceCompany)
	return nil
}

// applyClaim validates in and copies it onto cl.
func (s *Service) applyClaim(ctx context.Context, in ClaimInput, cl *model.Claim) error {
	if err := s.validate(in); err != nil {
		return err
	}
	c := s.checker(ctx)

	node, method := in.FailureNode, in.RecoveryMethod
	c.lookup("failure_node", store.FailureNodes, &node)
	c.lookup("recovery_method", store.RecoveryMethods, &method)
	c.user("service_company", model.RoleServiceCompany, ref(in.ServiceCompany))
	failed := parseDate(c.v, "failure_date", in.FailureDate)
	recovered := parseOptDate(c.v, "recovery_date", in.RecoveryDate)
	if recovered != nil && recovered.Before(failed) {
		c.v.add("recovery_date", "must not be before the failure date")
	}
	if err := c.result(); err != nil {
		return err
	}

	cl.FailureDate = failed
	cl.Hours = in.Hours
	cl.FailureNodeID = in.FailureNode
	cl.FailureDescription = in.FailureDescription
	cl.RecoveryMethodID = in.RecoveryMethod
	cl.PartsUsed = in.PartsUsed
	cl.RecoveryDate = recovered
	cl.ServiceCompanyID = ref(in.ServiceCompany)
	return nil
}
