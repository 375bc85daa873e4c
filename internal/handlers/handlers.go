package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"colecta_engine/internal/adapters/reportsink"
	"colecta_engine/internal/config/connections/mongo"
	"colecta_engine/internal/config/connections/postgres"
	"colecta_engine/internal/config/connections/s3"
	"colecta_engine/internal/models"
	"colecta_engine/internal/repository/audit"
	"colecta_engine/internal/repository/database"
	"colecta_engine/internal/services/allocator"
	"colecta_engine/internal/services/loans"
	"colecta_engine/internal/services/reconciler"
)

type Handlers struct {
	Postgres *postgres.Postgres
	Mongo    *mongo.Mongo
	S3       *s3.S3

	Loans      *loans.Service
	Allocator  *allocator.Service
	Reconciler *reconciler.Service
	Reports    *reportsink.S3Sink

	Logger *log.Logger
}

func New(pg *postgres.Postgres, mg *mongo.Mongo, s3c *s3.S3) *Handlers {
	store := database.NewStorage(pg)
	trail := audit.NewTrail(mg)

	return &Handlers{
		Postgres:   pg,
		Mongo:      mg,
		S3:         s3c,
		Loans:      loans.New(store, trail),
		Allocator:  allocator.New(store, trail),
		Reconciler: reconciler.New(store, trail),
		Reports:    reportsink.NewS3Sink(s3c.Client, s3c.Bucket),
		Logger:     log.Default(),
	}
}

func (h *Handlers) JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Error maps the engine taxonomy onto HTTP. Validation and conflict errors
// carry their message so the operator can correct input; storage errors are
// reported as retryable without internal detail.
func (h *Handlers) Error(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	var se *models.StorageError

	switch {
	case errors.As(err, &ve):
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error()})
	case errors.Is(err, models.ErrNotFound):
		h.JSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, models.ErrAlreadyReconciled), errors.Is(err, models.ErrAllocationConflict):
		h.JSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &se):
		h.Logger.Printf("[HTTP][STORAGE][ERR] %v", err)
		h.JSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage temporarily unavailable, retry later"})
	default:
		h.Logger.Printf("[HTTP][ERR] %v", err)
		h.JSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, models.Invalid(field, "required, format 2006-01-02")
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, models.Invalid(field, "format must be 2006-01-02")
	}
	return d, nil
}

func parseMoney(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, models.Invalid(field, "required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, models.Invalid(field, "not a valid amount")
	}
	return d, nil
}
