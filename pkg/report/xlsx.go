// Package report renders decisions as spreadsheets for offline review.
package report

import (
	"fmt"
	"io"

	"github.com/montanaflynn/stats"
	"github.com/xuri/excelize/v2"

	"canaswarm/entities"
)

const (
	SheetSummary   = "Summary"
	SheetZones     = "Zones"
	SheetNextSteps = "Next steps"
)

var zoneHeader = []any{
	"Zone", "Area (ha)", "Status", "Action", "Priority",
	"ROI (BRL/year)", "Implementation cost (BRL)", "Payback (months)", "Justification",
}

// WriteDecisionWorkbook writes d as an xlsx workbook with one sheet for the
// field summary, one row per zone and the ordered next steps.
func WriteDecisionWorkbook(w io.Writer, d *entities.FieldDecision) error {
	if d == nil {
		return fmt.Errorf("report: nil decision")
	}
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName(x.GetSheetName(0), SheetSummary); err != nil {
		return err
	}
	bold, err := x.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	summary := [][]any{
		{"Field", d.FieldID},
		{"Crop", d.Crop},
		{"Season", d.Season},
		{"Total area (ha)", d.TotalAreaHa},
		{"Analysis date", d.AnalysisDate},
		{"Decision date", d.DecisionDate},
		{"Priority", d.Priority.Level.String()},
		{"Priority score", d.Priority.Score},
		{"Priority reason", d.Priority.Reason},
		{"Total ROI (BRL/year)", d.TotalEstimatedROI},
		{"High priority actions", d.HighPriorityCount()},
	}
	summary = append(summary, zoneFigures(d)...)
	if err := writeRows(x, SheetSummary, summary); err != nil {
		return err
	}
	if err := x.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return err
	}
	if err := x.SetColWidth(SheetSummary, "A", "A", 24); err != nil {
		return err
	}

	if _, err := x.NewSheet(SheetZones); err != nil {
		return err
	}
	zones := make([][]any, 0, len(d.Zones)+1)
	zones = append(zones, zoneHeader)
	for _, z := range d.Zones {
		zones = append(zones, []any{
			z.ZoneID,
			z.AreaHa,
			z.CurrentStatus.String(),
			z.Action.Action,
			z.Action.Priority.String(),
			z.Action.EstimatedROI,
			optional(z.Action.ImplementationCost),
			optional(z.Action.PaybackMonths),
			z.Action.Justification,
		})
	}
	if err := writeRows(x, SheetZones, zones); err != nil {
		return err
	}
	if err := x.SetCellStyle(SheetZones, "A1", "I1", bold); err != nil {
		return err
	}
	if err := x.SetColWidth(SheetZones, "I", "I", 80); err != nil {
		return err
	}

	if _, err := x.NewSheet(SheetNextSteps); err != nil {
		return err
	}
	steps := make([][]any, 0, len(d.NextSteps)+1)
	steps = append(steps, []any{"#", "Step"})
	for i, s := range d.NextSteps {
		steps = append(steps, []any{i + 1, s})
	}
	if err := writeRows(x, SheetNextSteps, steps); err != nil {
		return err
	}
	if err := x.SetCellStyle(SheetNextSteps, "A1", "B1", bold); err != nil {
		return err
	}
	if err := x.SetColWidth(SheetNextSteps, "B", "B", 90); err != nil {
		return err
	}

	x.SetActiveSheet(0)
	return x.Write(w)
}

func writeRows(x *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func optional[T any](v *T) any {
	if v == nil {
		return ""
	}
	return *v
}

// zoneFigures summarises the per-zone ROI distribution and the area under
// critical or warning status. A decision without zones yields no rows.
func zoneFigures(d *entities.FieldDecision) [][]any {
	if len(d.Zones) == 0 {
		return nil
	}
	roi := make(stats.Float64Data, 0, len(d.Zones))
	atRisk := make(stats.Float64Data, 0, len(d.Zones))
	for _, z := range d.Zones {
		roi = append(roi, z.Action.EstimatedROI)
		if z.CurrentStatus != entities.StatusOptimal {
			atRisk = append(atRisk, z.AreaHa)
		}
	}
	mean, _ := roi.Mean()
	median, _ := roi.Median()
	maxROI, _ := roi.Max()
	area, _ := atRisk.Sum()
	return [][]any{
		{"Mean zone ROI (BRL/year)", round2(mean)},
		{"Median zone ROI (BRL/year)", round2(median)},
		{"Max zone ROI (BRL/year)", round2(maxROI)},
		{"Area needing action (ha)", round2(area)},
	}
}

func round2(v float64) float64 {
	r, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return r
}
