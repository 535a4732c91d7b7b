// Package gateway drives the transaction lifecycle against the payment
// processor: register, query on return from the hosted terminal, and the
// process actions (authorize, capture, credit, void). It owns no payment
// state; callers persist whatever state transition a result implies.
package gateway

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"nets-gateway/internal/config"
	"nets-gateway/internal/event"
	"nets-gateway/internal/kid"
	"nets-gateway/internal/netaxept"
)

const (
	terminalTest = "https://test.epayment.nets.eu/Terminal/default.aspx"
	terminalLive = "https://epayment.nets.eu/Terminal/default.aspx"

	invoiceRegisterTest = "https://pvu-test.nets.no/pvutest/atgtest.do"
	invoiceRegisterLive = "https://epayment.nets.eu/Netaxept/Register.aspx"
)

type Manager struct {
	gateway   config.Gateway
	client    *netaxept.Client
	cache     *QueryCache
	publisher *event.Publisher
	logger    *slog.Logger
}

// NewManager wires the lifecycle manager. publisher may be nil when no
// event pipeline is configured.
func NewManager(gateway config.Gateway, client *netaxept.Client, cache *QueryCache, publisher *event.Publisher, logger *slog.Logger) *Manager {
	return &Manager{
		gateway:   gateway,
		client:    client,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

// Register creates the transaction at the processor and returns the
// remote transaction id. On failure the error is surfaced unchanged; the
// caller must not create a local payment record in that case.
func (m *Manager) Register(ctx context.Context, ord netaxept.OrderData, urls netaxept.RedirectURLs) (string, error) {
	request := netaxept.BuildRegisterRequest(m.gateway, ord, urls)

	raw, err := m.client.Invoke(ctx, netaxept.OpRegister, m.envelope(&request))
	if err != nil {
		m.logger.ErrorContext(ctx, "Could not register new transaction", "orderNumber", ord.OrderNumber, "error", err)
		return "", err
	}

	return netaxept.InterpretRegister(raw)
}

// QueryOnReturn reads the transaction state back from the processor.
// With reuse set, a cached result for the same remote id is returned
// without a second remote call; a failed lookup always clears the cache
// entry.
func (m *Manager) QueryOnReturn(ctx context.Context, remoteID string, reuse bool) (netaxept.RemoteTransactionResult, error) {
	if reuse {
		if result, ok := m.cache.Get(remoteID); ok {
			return result, nil
		}
	}

	request := netaxept.BuildQueryRequest(remoteID)

	raw, err := m.client.Invoke(ctx, netaxept.OpQuery, m.envelope(&request))
	if err != nil {
		m.cache.Delete(remoteID)
		return netaxept.RemoteTransactionResult{}, err
	}

	result, err := netaxept.InterpretQuery(raw)
	if err != nil {
		m.cache.Delete(remoteID)
		return netaxept.RemoteTransactionResult{}, err
	}

	m.cache.Put(remoteID, result)
	return result, nil
}

// ProcessInput identifies the payment a lifecycle action runs against.
type ProcessInput struct {
	PaymentID   uuid.UUID
	OrderNumber string
	RemoteID    string
	Currency    string
}

// Process executes one lifecycle action and returns the processor's
// response code for the caller to map onto local state. A nil amount
// means the full remaining balance. Calls are never deduplicated here;
// calling twice issues two remote calls.
func (m *Manager) Process(ctx context.Context, in ProcessInput, action netaxept.ProcessOperation, amount *int64) (string, error) {
	if !action.Valid() {
		return "", errors.Errorf("gateway: invalid process action %q", action)
	}

	request := netaxept.BuildProcessRequest(in.RemoteID, action, amount, "")

	raw, err := m.client.Invoke(ctx, netaxept.OpProcess, m.envelope(&request))
	if err != nil {
		return "", err
	}

	responseCode, err := netaxept.InterpretProcess(raw)
	if err != nil {
		return "", err
	}

	if m.publisher != nil {
		m.publisher.Publish(ctx, event.TransactionEvent{
			ID:           uuid.New(),
			PaymentID:    in.PaymentID,
			OrderNumber:  in.OrderNumber,
			Action:       string(action),
			ResponseCode: responseCode,
			Amount:       amount,
			Currency:     in.Currency,
			OccurredAt:   time.Now(),
		})
	}

	return responseCode, nil
}

// RegisterInvoice builds the direct-debit registration redirect: a GET
// URL carrying the merchant agreement, the KID derived from the order
// number and the amount limit in minor units. There is no remote call
// and no verification step on this path.
func (m *Manager) RegisterInvoice(ord netaxept.OrderData, urls netaxept.RedirectURLs) (string, error) {
	reference, err := kid.Compute(ord.OrderNumber)
	if err != nil {
		return "", err
	}

	endpoint := invoiceRegisterTest
	if m.gateway.Live() {
		endpoint = invoiceRegisterLive
	}

	params := url.Values{}
	params.Set("merchantId", m.gateway.MerchantID)
	params.Set("url", urls.Return)
	params.Set("account", m.gateway.AccountNumber)
	params.Set("kid", reference)
	params.Set("name", m.gateway.CompanyName)
	params.Set("limit", strconv.FormatInt(ord.Charge.Amount, 10))

	return endpoint + "?" + params.Encode(), nil
}

// TerminalURL is the hosted-terminal page the payer is redirected to
// after a successful register.
func (m *Manager) TerminalURL(remoteID string) string {
	endpoint := terminalTest
	if m.gateway.Live() {
		endpoint = terminalLive
	}

	params := url.Values{}
	params.Set("merchantid", m.gateway.MerchantID)
	params.Set("transactionId", remoteID)

	return endpoint + "?" + params.Encode()
}

func (m *Manager) envelope(request any) netaxept.Envelope {
	return netaxept.Envelope{
		Token:      m.gateway.Token,
		MerchantID: m.gateway.MerchantID,
		Request:    request,
	}
}
