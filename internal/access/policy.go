package access

import "fleet-records-backend/internal/model"

// Policy evaluates permissions. The zero value denies clients any
// edit/delete on maintenance; use DefaultPolicy for the standard rules.
type Policy struct {
	// ClientManagesMaintenance lets a client edit and delete maintenance
	// records on machines it owns.
	ClientManagesMaintenance bool
}

// DefaultPolicy is the policy with every optional rule enabled.
func DefaultPolicy() Policy {
	return Policy{ClientManagesMaintenance: true}
}

// MaintenanceOn is the create target for a new maintenance record on m.
func MaintenanceOn(m *model.Machine) *model.Maintenance {
	return &model.Maintenance{MachineID: m.ID, Machine: *m}
}

// ClaimOn is the create target for a new claim on m, attributed to the
// given service company (nil when not yet chosen).
func ClaimOn(m *model.Machine, serviceCompanyID *int64) *model.Claim {
	return &model.Claim{MachineID: m.ID, Machine: *m, ServiceCompanyID: serviceCompanyID}
}

// Can reports whether actor may perform action on target. target is a
// *model.Machine (nil for machine creation), *model.Maintenance or
// *model.Claim; child records must have Machine loaded.
func (p Policy) Can(actor Actor, action Action, target any) bool {
	if !actor.Authenticated() {
		return false
	}
	if actor.Role == RoleManager {
		return true
	}

	switch t := target.(type) {
	case *model.Machine:
		return p.machine(actor, action, t)
	case *model.Maintenance:
		if t == nil {
			return false
		}
		return p.maintenance(actor, action, t)
	case *model.Claim:
		if t == nil {
			return false
		}
		return p.claim(actor, action, t)
	default:
		return false
	}
}

func (p Policy) machine(actor Actor, action Action, m *model.Machine) bool {
	// Only managers create, edit or delete machines.
	if action != View || m == nil {
		return false
	}
	switch actor.Role {
	case RoleClient:
		return actor.is(m.ClientID)
	case RoleServiceCompany:
		return actor.is(m.ServiceCompanyID)
	default:
		return false
	}
}

func (p Policy) maintenance(actor Actor, action Action, mt *model.Maintenance) bool {
	switch actor.Role {
	case RoleClient:
		owner := actor.is(mt.Machine.ClientID)
		switch action {
		case View, Create:
			return owner
		case Edit, Delete:
			return owner && p.ClientManagesMaintenance
		}
	case RoleServiceCompany:
		performer := actor.is(mt.OrganizationID) || actor.is(mt.ServiceCompanyID)
		servicing := actor.is(mt.Machine.ServiceCompanyID)
		switch action {
		case View:
			return performer
		case Create:
			return servicing
		case Edit, Delete:
			return performer && servicing
		}
	}
	return false
}

func (p Policy) claim(actor Actor, action Action, c *model.Claim) bool {
	switch actor.Role {
	case RoleClient:
		// Clients only ever read claims on their own machines.
		return action == View && actor.is(c.Machine.ClientID)
	case RoleServiceCompany:
		if action == View {
			return actor.is(c.ServiceCompanyID)
		}
		return actor.is(c.ServiceCompanyID) && actor.is(c.Machine.ServiceCompanyID)
	}
	return false
}

// CanOpenClaimForm is the machine-level gate for showing the claim form:
// the service company attribution is fixed to the actor on submit.
func (p Policy) CanOpenClaimForm(actor Actor, m *model.Machine) bool {
	if actor.Role == RoleServiceCompany {
		id := actor.UserID
		return p.Can(actor, Create, ClaimOn(m, &id))
	}
	return p.Can(actor, Create, ClaimOn(m, nil))
}
