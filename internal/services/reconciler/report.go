package reconciler

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xuri/excelize/v2"

	"colecta_engine/internal/models"
	"colecta_engine/internal/utils"
)

// DayReport renders the stored reconciliation for a group as an XLSX
// workbook: a summary sheet plus one row per payment collected that day.
// The group must already be reconciled.
func (s *Service) DayReport(ctx context.Context, date time.Time, routeID, collectorID string) ([]byte, string, error) {
	day := utils.DateOnly(date)

	rec, err := s.Store.Reconciliations().GetByGroup(ctx, day, routeID, collectorID)
	if err != nil {
		return nil, "", err
	}
	payments, err := s.Store.Payments().ListCollectedOn(ctx, day, routeID, collectorID)
	if err != nil {
		return nil, "", err
	}

	f, err := BuildDayReport(*rec, payments)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("[REPORT][WARN] close workbook: %v", cerr)
		}
	}()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}

	name := fmt.Sprintf("reconciliation_%s_%s_%s.xlsx", day.Format("2006-01-02"), routeID, collectorID)
	return buf.Bytes(), name, nil
}

const (
	sheetSummary  = "Summary"
	sheetPayments = "Payments"
)

// BuildDayReport lays the workbook out. Pure; storage-free.
func BuildDayReport(rec models.Reconciliation, payments []models.PaymentRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	idx, err := f.NewSheet(sheetSummary)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	summary := [][]any{
		{"Date", rec.Date.Format("2006-01-02")},
		{"Route", rec.RouteID},
		{"Collector", rec.CollectorID},
		{"Float handed out", rec.FloatAmount.String()},
		{"Collected", rec.Collected.String()},
		{"Insurance collected", rec.InsuranceCollected.String()},
		{"New loans disbursed", rec.NewLoansDisbursed.String()},
		{"Expenses (approved)", rec.ExpensesApproved.String()},
		{"Expenses (pending)", rec.ExpensesPending.String()},
		{"Theoretical return", rec.Theoretical.String()},
		{"Actually returned", rec.ActualReturned.String()},
		{"Difference", rec.Difference.String()},
		{"Classification", string(rec.Classification)},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(sheetPayments); err != nil {
		return nil, err
	}
	header := []any{"Payment ID", "Loan", "Installment", "Amount", "Kind", "Method", "Notes"}
	if err := f.SetSheetRow(sheetPayments, "A1", &header); err != nil {
		return nil, err
	}
	for i := range payments {
		p := &payments[i]
		row := []any{p.ID, p.LoanID, p.InstallmentID, p.Amount.String(), string(p.Kind), p.Method, p.Notes}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetPayments, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}
