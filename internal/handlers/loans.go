package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"colecta_engine/internal/models"
	"colecta_engine/internal/services/loans"
	"colecta_engine/internal/transport/auth"
)

type createLoanRequest struct {
	ClientID         string `json:"client_id"`
	RouteID          string `json:"route_id"`
	CollectorID      string `json:"collector_id"`
	Principal        string `json:"principal"`
	FlatRate         string `json:"flat_rate"`
	TermCount        int    `json:"term_count"`
	Periodicity      string `json:"periodicity"`
	InsuranceFee     string `json:"insurance_fee"`
	DisbursementDate string `json:"disbursement_date"`
	AnchorWeekday    string `json:"anchor_weekday,omitempty"`
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

func (h *Handlers) CreateLoan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use POST"})
		return
	}

	var req createLoanRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		h.Logger.Printf("[LOAN][REQ][ERR] bad JSON: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "bad JSON: " + err.Error()})
		return
	}

	principal, err := parseMoney("principal", req.Principal)
	if err != nil {
		h.Error(w, err)
		return
	}
	rate, err := parseMoney("flat_rate", req.FlatRate)
	if err != nil {
		h.Error(w, err)
		return
	}
	insurance, err := parseMoney("insurance_fee", req.InsuranceFee)
	if err != nil {
		h.Error(w, err)
		return
	}
	disbursed, err := parseDate("disbursement_date", req.DisbursementDate)
	if err != nil {
		h.Error(w, err)
		return
	}
	periodicity, err := models.ParsePeriodicity(req.Periodicity)
	if err != nil {
		h.Error(w, models.Invalid("periodicity", err.Error()))
		return
	}

	var anchor *time.Weekday
	if s := strings.ToLower(strings.TrimSpace(req.AnchorWeekday)); s != "" {
		wd, ok := weekdays[s]
		if !ok {
			h.Error(w, models.Invalid("anchor_weekday", "unknown weekday "+s))
			return
		}
		anchor = &wd
	}

	collectorID := req.CollectorID
	if collectorID == "" {
		if uid, err := auth.GetUserID(r.Context()); err == nil {
			collectorID = uid
		}
	}

	loan, err := h.Loans.Create(r.Context(), loans.CreateRequest{
		ClientID:         req.ClientID,
		RouteID:          req.RouteID,
		CollectorID:      collectorID,
		Principal:        principal,
		FlatRate:         rate,
		TermCount:        req.TermCount,
		Periodicity:      periodicity,
		InsuranceFee:     insurance,
		DisbursementDate: disbursed,
		AnchorWeekday:    anchor,
	})
	if err != nil {
		h.Error(w, err)
		return
	}

	h.JSON(w, http.StatusCreated, loanResponse(loan))
}

func (h *Handlers) LoanDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use GET"})
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		h.Error(w, models.Invalid("id", "required"))
		return
	}

	detail, err := h.Loans.Detail(r.Context(), id)
	if err != nil {
		h.Error(w, err)
		return
	}

	sched := make([]map[string]any, 0, len(detail.Schedule))
	for i := range detail.Schedule {
		inst := &detail.Schedule[i]
		row := map[string]any{
			"id":              inst.ID,
			"sequence_number": inst.SequenceNumber,
			"due_date":        inst.DueDate.Format("2006-01-02"),
			"scheduled_value": inst.ScheduledValue.String(),
			"principal_part":  inst.PrincipalPart.String(),
			"interest_part":   inst.InterestPart.String(),
			"amount_paid":     inst.AmountPaid.String(),
			"status":          string(inst.Status),
		}
		if inst.PaymentDate != nil {
			row["payment_date"] = inst.PaymentDate.Format("2006-01-02")
		}
		sched = append(sched, row)
	}

	h.JSON(w, http.StatusOK, map[string]any{
		"loan":          loanResponse(&detail.Loan),
		"schedule":      sched,
		"overdue_count": detail.OverdueCount,
	})
}

func loanResponse(l *models.Loan) map[string]any {
	return map[string]any{
		"id":                      l.ID,
		"client_id":               l.ClientID,
		"route_id":                l.RouteID,
		"collector_id":            l.CollectorID,
		"principal":               l.Principal.String(),
		"flat_rate":               l.FlatRate.String(),
		"term_count":              l.TermCount,
		"periodicity":             string(l.Periodicity),
		"insurance_fee":           l.InsuranceFee.String(),
		"disbursement_date":       l.DisbursementDate.Format("2006-01-02"),
		"first_due_date":          l.FirstDueDate.Format("2006-01-02"),
		"total_amount":            l.TotalAmount.String(),
		"outstanding_balance":     l.OutstandingBalance.String(),
		"installments_paid_count": l.InstallmentsPaidCount,
		"status":                  string(l.Status),
	}
}
