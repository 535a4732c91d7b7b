package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"nets-gateway/internal/db"
	"nets-gateway/internal/logcontext"
	"nets-gateway/internal/money"
	"nets-gateway/internal/netaxept"
)

type actionRequest struct {
	Amount string `json:"amount,omitempty"`
}

type actionResponse struct {
	PaymentID    string `json:"paymentId"`
	State        string `json:"state"`
	ResponseCode string `json:"responseCode"`
}

// CapturePayment captures an authorized payment, in full or partially.
// A partial capture splits the payment: the captured slice becomes its
// own completed payment and the remainder stays authorized (or is
// voided when nothing remains).
func (h *Handler) CapturePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payment, tx, ok := h.lockPayment(w, r, db.StateAuthorization)
	if !ok {
		return
	}
	defer tx.Rollback(ctx)

	ctx = logcontext.AppendCtx(ctx, slog.String("paymentId", payment.ID.String()))

	amount, ok := h.actionAmount(w, r, payment, payment.Amount)
	if !ok {
		return
	}
	if amount > payment.Amount {
		respondError(w, http.StatusBadRequest, "capture amount exceeds authorized amount")
		return
	}

	target := payment
	if amount < payment.Amount {
		target = &db.PaymentEntity{
			ID:          uuid.New(),
			OrderNumber: payment.OrderNumber,
			Amount:      amount,
			Currency:    payment.Currency,
			State:       db.StateNew,
			RemoteID:    payment.RemoteID,
		}
	}

	code, err := h.manager.Process(ctx, processInput(target), netaxept.OpCapture, &amount)
	if err != nil {
		respondError(w, http.StatusBadGateway, "unable to capture payment")
		return
	}

	target.State = db.StateCompleted
	target.RemoteState = code

	if target != payment {
		if err := h.repo.CreateInTx(ctx, tx, target); err != nil {
			h.logger.ErrorContext(ctx, "Error persisting partial capture", "error", err)
			respondError(w, http.StatusInternalServerError, "could not persist payment")
			return
		}
		payment.Amount -= amount
	}

	if err := h.repo.Update(ctx, tx, payment); err != nil {
		h.logger.ErrorContext(ctx, "Error updating payment", "error", err)
		respondError(w, http.StatusInternalServerError, "could not persist payment")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.logger.ErrorContext(ctx, "Error committing transaction", "error", err)
		respondError(w, http.StatusInternalServerError, "could not persist payment")
		return
	}

	respondJSON(w, http.StatusOK, actionResponse{
		PaymentID:    target.ID.String(),
		State:        target.State,
		ResponseCode: code,
	})
}

// RefundPayment credits a captured payment, in full or partially.
func (h *Handler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payment, tx, ok := h.lockPayment(w, r, db.StateCompleted, db.StatePartiallyRefunded)
	if !ok {
		return
	}
	defer tx.Rollback(ctx)

	ctx = logcontext.AppendCtx(ctx, slog.String("paymentId", payment.ID.String()))

	amount, ok := h.actionAmount(w, r, payment, payment.Balance())
	if !ok {
		return
	}
	if amount > payment.Balance() {
		respondError(w, http.StatusBadRequest, "refund amount exceeds remaining balance")
		return
	}

	code, err := h.manager.Process(ctx, processInput(payment), netaxept.OpCredit, &amount)
	if err != nil {
		respondError(w, http.StatusBadGateway, "unable to credit payment")
		return
	}

	payment.RefundedAmount += amount
	if payment.RefundedAmount < payment.Amount {
		payment.State = db.StatePartiallyRefunded
	} else {
		payment.State = db.StateRefunded
	}
	payment.RemoteState = code

	if !h.persist(ctx, w, tx, payment) {
		return
	}

	respondJSON(w, http.StatusOK, actionResponse{
		PaymentID:    payment.ID.String(),
		State:        payment.State,
		ResponseCode: code,
	})
}

// VoidPayment annuls an authorization that was never captured. The
// processor voids the full remaining amount, so no amount is sent.
func (h *Handler) VoidPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payment, tx, ok := h.lockPayment(w, r, db.StateAuthorization)
	if !ok {
		return
	}
	defer tx.Rollback(ctx)

	ctx = logcontext.AppendCtx(ctx, slog.String("paymentId", payment.ID.String()))

	code, err := h.manager.Process(ctx, processInput(payment), netaxept.OpAnnul, nil)
	if err != nil {
		respondError(w, http.StatusBadGateway, "unable to void payment")
		return
	}

	payment.State = db.StateAuthorizationVoided
	payment.RemoteState = code

	if !h.persist(ctx, w, tx, payment) {
		return
	}

	respondJSON(w, http.StatusOK, actionResponse{
		PaymentID:    payment.ID.String(),
		State:        payment.State,
		ResponseCode: code,
	})
}

// lockPayment loads and row-locks the payment and asserts its state is
// one of the allowed preconditions for the requested action.
func (h *Handler) lockPayment(w http.ResponseWriter, r *http.Request, allowedStates ...string) (*db.PaymentEntity, pgx.Tx, bool) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid payment id")
		return nil, nil, false
	}

	tx, err := h.repo.BeginTx(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error starting transaction", "error", err)
		respondError(w, http.StatusInternalServerError, "could not load payment")
		return nil, nil, false
	}

	payment, err := h.repo.SelectForUpdateByID(ctx, tx, id)
	if err != nil {
		tx.Rollback(ctx)
		respondError(w, http.StatusNotFound, "payment not found")
		return nil, nil, false
	}

	for _, state := range allowedStates {
		if payment.State == state {
			return payment, tx, true
		}
	}

	tx.Rollback(ctx)
	respondError(w, http.StatusConflict, "payment state "+payment.State+" does not allow this action")
	return nil, nil, false
}

// actionAmount parses the optional request amount, falling back to the
// given default when the body omits it.
func (h *Handler) actionAmount(w http.ResponseWriter, r *http.Request, payment *db.PaymentEntity, fallback int64) (int64, bool) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return 0, false
	}
	if req.Amount == "" {
		return fallback, true
	}

	parsed, err := money.ParseMinor(req.Amount, payment.Currency)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	if parsed.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "amount must be positive")
		return 0, false
	}
	return parsed.Amount, true
}

func (h *Handler) persist(ctx context.Context, w http.ResponseWriter, tx pgx.Tx, payment *db.PaymentEntity) bool {
	if err := h.repo.Update(ctx, tx, payment); err != nil {
		h.logger.ErrorContext(ctx, "Error updating payment", "error", err)
		respondError(w, http.StatusInternalServerError, "could not persist payment")
		return false
	}
	if err := tx.Commit(ctx); err != nil {
		h.logger.ErrorContext(ctx, "Error committing transaction", "error", err)
		respondError(w, http.StatusInternalServerError, "could not persist payment")
		return false
	}
	return true
}
