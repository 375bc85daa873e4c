package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"colecta_engine/internal/models"
)

type reconcileRequest struct {
	Date           string `json:"date"`
	RouteID        string `json:"route_id"`
	CollectorID    string `json:"collector_id"`
	ActualReturned string `json:"actual_returned"`
}

func (h *Handlers) Reconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use POST"})
		return
	}

	var req reconcileRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		h.Logger.Printf("[RECON][REQ][ERR] bad JSON: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "bad JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.RouteID) == "" {
		h.Error(w, models.Invalid("route_id", "required"))
		return
	}
	if strings.TrimSpace(req.CollectorID) == "" {
		h.Error(w, models.Invalid("collector_id", "required"))
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		h.Error(w, err)
		return
	}
	returned, err := parseMoney("actual_returned", req.ActualReturned)
	if err != nil {
		h.Error(w, err)
		return
	}

	rec, err := h.Reconciler.Reconcile(r.Context(), date, req.RouteID, req.CollectorID, returned)
	if err != nil {
		// The stored record rides along on a repeat attempt so the operator
		// can see what the day already closed at.
		if errors.Is(err, models.ErrAlreadyReconciled) {
			h.JSON(w, http.StatusConflict, map[string]any{
				"error":          err.Error(),
				"reconciliation": reconciliationResponse(&rec),
			})
			return
		}
		h.Error(w, err)
		return
	}

	h.JSON(w, http.StatusCreated, reconciliationResponse(&rec))
}

// ReconciliationReport renders the stored reconciliation as an XLSX
// workbook. With archive=1 the workbook is also uploaded to the report
// bucket and the object key returned; otherwise the bytes stream back as an
// attachment.
func (h *Handlers) ReconciliationReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use GET"})
		return
	}

	q := r.URL.Query()
	routeID := strings.TrimSpace(q.Get("route_id"))
	collectorID := strings.TrimSpace(q.Get("collector_id"))
	if routeID == "" {
		h.Error(w, models.Invalid("route_id", "required"))
		return
	}
	if collectorID == "" {
		h.Error(w, models.Invalid("collector_id", "required"))
		return
	}
	date, err := parseDate("date", q.Get("date"))
	if err != nil {
		h.Error(w, err)
		return
	}

	payload, name, err := h.Reconciler.DayReport(r.Context(), date, routeID, collectorID)
	if err != nil {
		h.Error(w, err)
		return
	}

	if q.Get("archive") == "1" {
		key, err := h.Reports.Upload(r.Context(), date.Format("2006-01-02"), name, payload)
		if err != nil {
			h.Error(w, err)
			return
		}
		h.JSON(w, http.StatusOK, map[string]any{
			"bucket":     h.S3.Bucket,
			"key":        key,
			"size_bytes": len(payload),
		})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func reconciliationResponse(rec *models.Reconciliation) map[string]any {
	return map[string]any{
		"id":                  rec.ID,
		"date":                rec.Date.Format("2006-01-02"),
		"route_id":            rec.RouteID,
		"collector_id":        rec.CollectorID,
		"collected":           rec.Collected.String(),
		"new_loans_disbursed": rec.NewLoansDisbursed.String(),
		"insurance_collected": rec.InsuranceCollected.String(),
		"expenses_approved":   rec.ExpensesApproved.String(),
		"expenses_pending":    rec.ExpensesPending.String(),
		"float_amount":        rec.FloatAmount.String(),
		"theoretical":         rec.Theoretical.String(),
		"actual_returned":     rec.ActualReturned.String(),
		"difference":          rec.Difference.String(),
		"classification":      string(rec.Classification),
	}
}
