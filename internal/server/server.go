package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"colecta_engine/internal/handlers"
)

type Server struct {
	httpServer *http.Server
}

// NewServer wires the engine routes. Everything except /health sits behind
// the token middleware.
func NewServer(port string, h *handlers.Handlers, protect func(http.Handler) http.Handler) *Server {
	mux := http.NewServeMux()

	if h != nil {
		mux.HandleFunc("/health", h.Health)

		guarded := http.NewServeMux()
		guarded.HandleFunc("/loans", h.CreateLoan)
		guarded.HandleFunc("/loans/detail", h.LoanDetail)
		guarded.HandleFunc("/payments", h.AllocatePayment)
		guarded.HandleFunc("/payments/reverse", h.ReversePayment)
		guarded.HandleFunc("/installments/reverse", h.ReverseInstallment)
		guarded.HandleFunc("/reconciliations", h.Reconcile)
		guarded.HandleFunc("/reconciliations/report", h.ReconciliationReport)

		var protected http.Handler = guarded
		if protect != nil {
			protected = protect(guarded)
		}
		mux.Handle("/", protected)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}
