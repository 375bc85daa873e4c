package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"colecta_engine/internal/models"
	"colecta_engine/internal/services/allocator"
	"colecta_engine/internal/transport/auth"
)

type allocateRequest struct {
	LoanID      string `json:"loan_id"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Method      string `json:"method,omitempty"`
	Notes       string `json:"notes,omitempty"`
	CollectorID string `json:"collector_id,omitempty"`
}

func (h *Handlers) AllocatePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use POST"})
		return
	}

	var req allocateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		h.Logger.Printf("[PAY][REQ][ERR] bad JSON: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "bad JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.LoanID) == "" {
		h.Error(w, models.Invalid("loan_id", "required"))
		return
	}

	amount, err := parseMoney("amount", req.Amount)
	if err != nil {
		h.Error(w, err)
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		h.Error(w, err)
		return
	}

	collectorID := req.CollectorID
	if collectorID == "" {
		if uid, err := auth.GetUserID(r.Context()); err == nil {
			collectorID = uid
		}
	}

	result, err := h.Allocator.Allocate(r.Context(), allocator.AllocateRequest{
		LoanID:      req.LoanID,
		Amount:      amount,
		Date:        date,
		Method:      req.Method,
		Notes:       req.Notes,
		CollectorID: collectorID,
	})
	if err != nil {
		h.Error(w, err)
		return
	}

	applications := make([]map[string]any, 0, len(result.Applications))
	for _, a := range result.Applications {
		applications = append(applications, map[string]any{
			"installment_id":  a.InstallmentID,
			"sequence_number": a.SequenceNumber,
			"applied":         a.Applied.String(),
			"paid_before":     a.PaidBefore.String(),
			"paid_after":      a.PaidAfter.String(),
			"status":          string(a.Status),
			"kind":            string(a.Kind),
		})
	}

	h.JSON(w, http.StatusOK, map[string]any{
		"loan_id":             result.LoanID,
		"total_applied":       result.TotalApplied.String(),
		"applications":        applications,
		"outstanding_balance": result.OutstandingBalance.String(),
		"loan_status":         string(result.LoanStatus),
	})
}

type reverseRequest struct {
	InstallmentID string `json:"installment_id,omitempty"`
	PaymentID     string `json:"payment_id,omitempty"`
}

// ReverseInstallment is the coarse undo: every payment record on the
// installment goes away.
func (h *Handlers) ReverseInstallment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use POST"})
		return
	}

	var req reverseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "bad JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.InstallmentID) == "" {
		h.Error(w, models.Invalid("installment_id", "required"))
		return
	}

	if err := h.Allocator.ReverseInstallment(r.Context(), req.InstallmentID); err != nil {
		h.Error(w, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]string{"status": "reversed", "installment_id": req.InstallmentID})
}

// ReversePayment undoes a single payment record.
func (h *Handlers) ReversePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use POST"})
		return
	}

	var req reverseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "bad JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.PaymentID) == "" {
		h.Error(w, models.Invalid("payment_id", "required"))
		return
	}

	if err := h.Allocator.ReversePaymentRecord(r.Context(), req.PaymentID); err != nil {
		h.Error(w, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]string{"status": "reversed", "payment_id": req.PaymentID})
}
