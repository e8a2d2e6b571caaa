package httpapi

import (
	"context"
	"log"
	"net/http"

	"dastyar-dashboard/internal/funds/domain"
	fundsservice "dastyar-dashboard/internal/funds/service"
)

// FundsHandler serves the AvailableFunds report endpoints.
type FundsHandler struct {
	svc *fundsservice.Service
}

// NewFundsHandler returns a handler over the funds service.
func NewFundsHandler(svc *fundsservice.Service) *FundsHandler {
	return &FundsHandler{svc: svc}
}

// GetAvailableFunds handles GET /AvailableFunds/GetAvailableFunds.
func (h *FundsHandler) GetAvailableFunds(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, h.svc.CombinedReport)
}

// GetBankBalance handles GET /AvailableFunds/GetBankBalance.
func (h *FundsHandler) GetBankBalance(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, h.svc.BankReport)
}

// GetFundBalance handles GET /AvailableFunds/GetFundBalance.
func (h *FundsHandler) GetFundBalance(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, r, h.svc.FundReport)
}

func (h *FundsHandler) serveReport(w http.ResponseWriter, r *http.Request, build func(context.Context) (*domain.BalanceReport, error)) {
	report, err := build(r.Context())
	if err != nil {
		log.Printf("httpapi: build balance report for %s: %v", r.URL.Path, err)
		writeTransportError(w, r, http.StatusInternalServerError, msgServerError)
		return
	}
	writeSuccess(w, r, report)
}
