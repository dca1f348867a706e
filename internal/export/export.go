// Package export writes machine listings to xlsx workbooks.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"fleet-records-backend/internal/model"
	"fleet-records-backend/internal/table"
)

// SheetName is the title of the only sheet in an export.
const SheetName = "Export"

// ContentType of the produced file.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DefaultMachineColumns is the column set used when none is configured.
var DefaultMachineColumns = []string{"serial_number", "model", "shipment_date", "client", "service_company"}

// Column is one exported field: a header title and how to read it from a
// resolved machine row.
type Column struct {
	Title string
	Value func(r *table.MachineRow) any
}

// MachineColumns maps column keys to their resolvers.
var MachineColumns = map[string]Column{
	"serial_number":       {"Serial number", func(r *table.MachineRow) any { return r.SerialNumber }},
	"model":               {"Machine model", func(r *table.MachineRow) any { return r.Model }},
	"engine_model":        {"Engine model", func(r *table.MachineRow) any { return r.EngineModel }},
	"engine_serial":       {"Engine serial", func(r *table.MachineRow) any { return r.EngineSerial }},
	"transmission_model":  {"Transmission model", func(r *table.MachineRow) any { return r.TransmissionModel }},
	"transmission_serial": {"Transmission serial", func(r *table.MachineRow) any { return r.TransmissionSerial }},
	"drive_axle_model":    {"Drive axle model", func(r *table.MachineRow) any { return r.DriveAxleModel }},
	"drive_axle_serial":   {"Drive axle serial", func(r *table.MachineRow) any { return r.DriveAxleSerial }},
	"steer_axle_model":    {"Steer axle model", func(r *table.MachineRow) any { return r.SteerAxleModel }},
	"steer_axle_serial":   {"Steer axle serial", func(r *table.MachineRow) any { return r.SteerAxleSerial }},
	"contract_number":     {"Contract number", func(r *table.MachineRow) any { return r.ContractNumber }},
	"contract_date":       {"Contract date", func(r *table.MachineRow) any { return r.ContractDate }},
	"shipment_date":       {"Shipment date", func(r *table.MachineRow) any { return r.ShipmentDate }},
	"consignee":           {"Consignee", func(r *table.MachineRow) any { return r.Consignee }},
	"operation_address":   {"Operation address", func(r *table.MachineRow) any { return r.OperationAddress }},
	"options":             {"Options", func(r *table.MachineRow) any { return r.Options }},
	"client":              {"Client", func(r *table.MachineRow) any { return r.Client }},
	"service_company":     {"Service company", func(r *table.MachineRow) any { return r.ServiceCompany }},
}

// CheckColumns reports the first unknown key.
func CheckColumns(keys []string) error {
	if len(keys) == 0 {
		return fmt.Errorf("no export columns")
	}
	for _, k := range keys {
		if _, ok := MachineColumns[k]; !ok {
			return fmt.Errorf("unknown export column %q", k)
		}
	}
	return nil
}

// Machines writes one header row and one row per machine, in the given
// order. The caller decides which machines are included.
func Machines(machines []model.Machine, keys []string) ([]byte, error) {
	if err := CheckColumns(keys); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(keys))
	for i, k := range keys {
		header[i] = MachineColumns[k].Title
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i := range machines {
		resolved := table.Machine(&machines[i], table.Caps{})
		row := make([]any, len(keys))
		for j, k := range keys {
			row[j] = MachineColumns[k].Value(&resolved)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename is the attachment name for an export produced at now.
func Filename(now time.Time) string {
	return "machines_" + now.Format("2006-01-02") + ".xlsx"
}
