package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/fx-trade-core/internal/orchestrator"
)

// WriteAuditReport writes orchestration results to an xlsx workbook with one
// sheet for the workflow summary and one for the individual risk checks.
func WriteAuditReport(results []*orchestrator.Result, path string) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const summarySheet = "Decisions"
	const checksSheet = "RiskChecks"
	fx.SetSheetName(fx.GetSheetName(0), summarySheet)
	fx.NewSheet(checksSheet)

	headStyle, _ := fx.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	summaryHeaders := []string{"Symbol", "Action", "Confidence", "Lot size", "Risk amount", "Risk level", "Outcome", "Reasons", "Warnings", "Elapsed (ms)"}
	for i, h := range summaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(summarySheet, cell, h)
		fx.SetCellStyle(summarySheet, cell, cell, headStyle)
	}

	checkHeaders := []string{"Symbol", "Check", "Level", "Value", "Detail"}
	for i, h := range checkHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(checksSheet, cell, h)
		fx.SetCellStyle(checksSheet, cell, cell, headStyle)
	}

	summaryRow := 2
	checkRow := 2
	for _, result := range results {
		values := []interface{}{
			result.Symbol,
			result.Decision.Action.String(),
			fmt.Sprintf("%.2f", result.Decision.Confidence),
			lotSize(result),
			riskAmount(result),
			riskLevel(result),
			string(result.Outcome),
			strings.Join(result.Reasons, "; "),
			strings.Join(result.Warnings, "; "),
			fmt.Sprintf("%.2f", result.ElapsedMS),
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, summaryRow)
			fx.SetCellValue(summarySheet, cell, v)
		}
		summaryRow++

		if result.Risk == nil {
			continue
		}
		for _, check := range result.Risk.Checks {
			values := []interface{}{
				result.Symbol,
				check.Name,
				check.Level.String(),
				fmt.Sprintf("%.4f", check.Value),
				check.Detail,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, checkRow)
				fx.SetCellValue(checksSheet, cell, v)
			}
			checkRow++
		}
	}

	if err := fx.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save audit report: %w", err)
	}
	return nil
}

func lotSize(result *orchestrator.Result) string {
	if result.Sizing == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", result.Sizing.LotSize)
}

func riskAmount(result *orchestrator.Result) string {
	if result.Sizing == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", result.Sizing.RiskAmount)
}

func riskLevel(result *orchestrator.Result) string {
	if result.Risk == nil {
		return "-"
	}
	return result.Risk.OverallLevel.String()
}
