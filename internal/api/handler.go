// Package api exposes the checkout lifecycle over HTTP: starting a
// checkout, handling the payer's return from the hosted terminal, and
// the merchant-side capture/refund/void actions.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"nets-gateway/internal/db"
	"nets-gateway/internal/gateway"
	"nets-gateway/internal/logcontext"
	"nets-gateway/internal/money"
	"nets-gateway/internal/netaxept"
)

// PaymentStore is the persistence surface the handlers depend on,
// satisfied by db.PaymentRepository.
type PaymentStore interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CreateSession(ctx context.Context, entity *db.CheckoutSessionEntity) error
	SelectSessionByRemoteID(ctx context.Context, remoteID string) (*db.CheckoutSessionEntity, error)
	ConsumeSession(ctx context.Context, remoteID string) error
	Create(ctx context.Context, entity *db.PaymentEntity) error
	SelectByRemoteID(ctx context.Context, remoteID string) ([]*db.PaymentEntity, error)
	SelectForUpdateByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*db.PaymentEntity, error)
	Update(ctx context.Context, tx pgx.Tx, entity *db.PaymentEntity) error
	CreateInTx(ctx context.Context, tx pgx.Tx, entity *db.PaymentEntity) error
}

type Handler struct {
	manager *gateway.Manager
	repo    PaymentStore
	logger  *slog.Logger
}

func NewHandler(manager *gateway.Manager, repo PaymentStore, logger *slog.Logger) *Handler {
	return &Handler{manager: manager, repo: repo, logger: logger}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /checkout", h.CreateCheckout)
	mux.HandleFunc("GET /checkout/return", h.HandleReturn)
	mux.HandleFunc("POST /checkout/invoice", h.CreateInvoiceCheckout)
	mux.HandleFunc("POST /payments/{id}/capture", h.CapturePayment)
	mux.HandleFunc("POST /payments/{id}/refund", h.RefundPayment)
	mux.HandleFunc("POST /payments/{id}/void", h.VoidPayment)
}

type createCheckoutRequest struct {
	OrderNumber    string `json:"orderNumber"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	Email          string `json:"email,omitempty"`
	CustomerNumber string `json:"customerNumber,omitempty"`
	Capture        bool   `json:"capture"`
	ReturnURL      string `json:"returnUrl"`
	CancelURL      string `json:"cancelUrl"`
}

type createCheckoutResponse struct {
	TransactionID string `json:"transactionId"`
	TerminalURL   string `json:"terminalUrl"`
}

// CreateCheckout registers the transaction at the processor and hands
// back the hosted-terminal URL to redirect the payer to. No local
// payment exists yet; the session row only correlates the return.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OrderNumber == "" || req.Amount == "" || req.Currency == "" || req.ReturnURL == "" || req.CancelURL == "" {
		respondError(w, http.StatusBadRequest, "orderNumber, amount, currency, returnUrl and cancelUrl are required")
		return
	}

	charge, err := money.ParseMinor(req.Amount, req.Currency)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx = logcontext.AppendCtx(ctx, slog.String("orderNumber", req.OrderNumber))

	ord := netaxept.OrderData{
		OrderNumber:    req.OrderNumber,
		CustomerNumber: req.CustomerNumber,
		Email:          req.Email,
		Charge:         charge,
	}
	urls := netaxept.RedirectURLs{
		Return: req.ReturnURL + "?capture=" + captureFlag(req.Capture),
		Cancel: req.CancelURL,
	}

	remoteID, err := h.manager.Register(ctx, ord, urls)
	if err != nil {
		respondError(w, http.StatusBadGateway, "could not register transaction, please try again")
		return
	}

	session := &db.CheckoutSessionEntity{
		RemoteID:    remoteID,
		OrderNumber: req.OrderNumber,
		Amount:      charge.Amount,
		Currency:    charge.Currency,
		Capture:     req.Capture,
		CreatedAt:   time.Now(),
	}
	if err := h.repo.CreateSession(ctx, session); err != nil {
		h.logger.ErrorContext(ctx, "Error persisting checkout session", "error", err)
		respondError(w, http.StatusInternalServerError, "could not persist checkout session")
		return
	}

	h.logger.InfoContext(ctx, "Sending payer to terminal", "transactionId", remoteID)

	respondJSON(w, http.StatusCreated, createCheckoutResponse{
		TransactionID: remoteID,
		TerminalURL:   h.manager.TerminalURL(remoteID),
	})
}

type returnResponse struct {
	PaymentID    string `json:"paymentId"`
	State        string `json:"state"`
	ResponseCode string `json:"responseCode"`
}

// HandleReturn completes a checkout after the payer comes back from the
// terminal. The redirect parameters carry no authentication, so the
// transaction state is always re-read from the processor before any
// action runs.
func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	remoteID := r.URL.Query().Get("transactionId")
	responseCode := r.URL.Query().Get("responseCode")
	if remoteID == "" || responseCode == "" {
		respondError(w, http.StatusBadRequest, "transactionId and responseCode are required")
		return
	}

	ctx = logcontext.AppendCtx(ctx, slog.String("transactionId", remoteID))

	session, err := h.repo.SelectSessionByRemoteID(ctx, remoteID)
	if err != nil {
		h.logger.ErrorContext(ctx, "No checkout session for returned transaction", "error", err)
		respondError(w, http.StatusBadRequest, "unknown transaction")
		return
	}
	if session.ConsumedAt != nil {
		respondError(w, http.StatusConflict, "checkout already completed")
		return
	}
	if existing, err := h.repo.SelectByRemoteID(ctx, remoteID); err == nil && len(existing) > 0 {
		respondError(w, http.StatusConflict, "checkout already completed")
		return
	}

	result, err := h.manager.QueryOnReturn(ctx, remoteID, false)
	if err != nil {
		respondError(w, http.StatusBadGateway, "error at payment gateway")
		return
	}
	if result.Failed {
		h.logger.ErrorContext(ctx, "Payment failed at terminal",
			"orderNumber", session.OrderNumber,
			"reason", result.ResponseText,
			"responseCode", result.ResponseCode,
		)
		respondError(w, http.StatusBadGateway, "error at payment gateway")
		return
	}

	action := netaxept.OpAuth
	state := db.StateAuthorization
	if session.Capture {
		action = netaxept.OpSale
		state = db.StateCompleted
	}

	payment := &db.PaymentEntity{
		ID:          uuid.New(),
		OrderNumber: session.OrderNumber,
		Amount:      session.Amount,
		Currency:    session.Currency,
		State:       db.StateNew,
		RemoteID:    remoteID,
		RemoteState: responseCode,
	}

	code, err := h.manager.Process(ctx, processInput(payment), action, nil)
	if err != nil {
		respondError(w, http.StatusBadGateway, "authorization failed")
		return
	}

	payment.State = state
	payment.RemoteState = code
	if err := h.repo.Create(ctx, payment); err != nil {
		h.logger.ErrorContext(ctx, "Error persisting payment", "error", err)
		respondError(w, http.StatusInternalServerError, "could not persist payment")
		return
	}
	if err := h.repo.ConsumeSession(ctx, remoteID); err != nil {
		h.logger.ErrorContext(ctx, "Error consuming checkout session", "error", err)
	}

	respondJSON(w, http.StatusOK, returnResponse{
		PaymentID:    payment.ID.String(),
		State:        payment.State,
		ResponseCode: code,
	})
}

type invoiceCheckoutRequest struct {
	OrderNumber string `json:"orderNumber"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	ReturnURL   string `json:"returnUrl"`
}

type invoiceCheckoutResponse struct {
	RedirectURL string `json:"redirectUrl"`
}

// CreateInvoiceCheckout builds the direct-debit registration redirect.
// The settlement arrives out of band; there is no query step for this
// flow.
func (h *Handler) CreateInvoiceCheckout(w http.ResponseWriter, r *http.Request) {
	var req invoiceCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OrderNumber == "" || req.Amount == "" || req.Currency == "" || req.ReturnURL == "" {
		respondError(w, http.StatusBadRequest, "orderNumber, amount, currency and returnUrl are required")
		return
	}

	charge, err := money.ParseMinor(req.Amount, req.Currency)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	redirectURL, err := h.manager.RegisterInvoice(
		netaxept.OrderData{OrderNumber: req.OrderNumber, Charge: charge},
		netaxept.RedirectURLs{Return: req.ReturnURL},
	)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, invoiceCheckoutResponse{RedirectURL: redirectURL})
}

func captureFlag(capture bool) string {
	if capture {
		return "1"
	}
	return "0"
}

func processInput(payment *db.PaymentEntity) gateway.ProcessInput {
	return gateway.ProcessInput{
		PaymentID:   payment.ID,
		OrderNumber: payment.OrderNumber,
		RemoteID:    payment.RemoteID,
		Currency:    payment.Currency,
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
