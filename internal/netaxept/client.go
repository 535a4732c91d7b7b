package netaxept

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/pkg/errors"

	"nets-gateway/internal/config"
)

const (
	EndpointTest = "https://test.epayment.nets.eu/netaxept.svc"
	EndpointLive = "https://epayment.nets.eu/netaxept.svc"

	defaultTimeoutMs = 10_000
)

type callMetrics struct {
	TransportErrorCounter *metrics.Counter
	ProtocolErrorCounter  *metrics.Counter
	RemoteErrorCounter    *metrics.Counter
	SuccessCounter        *metrics.Counter
}

var (
	registerCallMetrics = callMetrics{
		TransportErrorCounter: metrics.GetOrCreateCounter(`netaxept_call_total{result="transport_error",operation="register"}`),
		ProtocolErrorCounter:  metrics.GetOrCreateCounter(`netaxept_call_total{result="protocol_error",operation="register"}`),
		RemoteErrorCounter:    metrics.GetOrCreateCounter(`netaxept_call_total{result="remote_error",operation="register"}`),
		SuccessCounter:        metrics.GetOrCreateCounter(`netaxept_call_total{result="success",operation="register"}`),
	}

	processCallMetrics = callMetrics{
		TransportErrorCounter: metrics.GetOrCreateCounter(`netaxept_call_total{result="transport_error",operation="process"}`),
		ProtocolErrorCounter:  metrics.GetOrCreateCounter(`netaxept_call_total{result="protocol_error",operation="process"}`),
		RemoteErrorCounter:    metrics.GetOrCreateCounter(`netaxept_call_total{result="remote_error",operation="process"}`),
		SuccessCounter:        metrics.GetOrCreateCounter(`netaxept_call_total{result="success",operation="process"}`),
	}

	queryCallMetrics = callMetrics{
		TransportErrorCounter: metrics.GetOrCreateCounter(`netaxept_call_total{result="transport_error",operation="query"}`),
		ProtocolErrorCounter:  metrics.GetOrCreateCounter(`netaxept_call_total{result="protocol_error",operation="query"}`),
		RemoteErrorCounter:    metrics.GetOrCreateCounter(`netaxept_call_total{result="remote_error",operation="query"}`),
		SuccessCounter:        metrics.GetOrCreateCounter(`netaxept_call_total{result="success",operation="query"}`),
	}

	callDurationHistogram = metrics.GetOrCreateHistogram(`netaxept_call_duration_milliseconds`)
)

func metricsFor(op Operation) callMetrics {
	switch op {
	case OpProcess:
		return processCallMetrics
	case OpQuery:
		return queryCallMetrics
	default:
		return registerCallMetrics
	}
}

// Client invokes one named operation per call against the processor's
// SOAP endpoint. It performs a single attempt and no retries; whether a
// failed call is worth repeating is the caller's decision.
type Client struct {
	httpClient *http.Client
	endpoint   string
	logger     *slog.Logger
}

func NewClient(gateway config.Gateway, cfg config.Client, logger *slog.Logger) *Client {
	endpoint := EndpointTest
	if gateway.Live() {
		endpoint = EndpointLive
	}

	timeoutMs := cfg.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = defaultTimeoutMs
	}

	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		endpoint:   endpoint,
		logger:     logger,
	}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Invoke performs one remote operation. Failures come back as exactly one
// of TransportError, ProtocolError or RemoteError, each logged once with
// the operation and any nested detail before being returned.
func (c *Client) Invoke(ctx context.Context, op Operation, env Envelope) (*RawResult, error) {
	startTime := time.Now()

	payload, err := encodeEnvelope(op, env)
	if err != nil {
		protocolErr := &ProtocolError{Operation: op, Reason: err.Error()}
		c.logFailure(ctx, op, protocolErr)
		metricsFor(op).ProtocolErrorCounter.Inc()
		return nil, protocolErr
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		transportErr := &TransportError{Operation: op, Err: err}
		c.logFailure(ctx, op, transportErr)
		metricsFor(op).TransportErrorCounter.Inc()
		return nil, transportErr
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", serviceNS+"Netaxept/"+string(op))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		transportErr := &TransportError{Operation: op, Err: err}
		c.logFailure(ctx, op, transportErr)
		metricsFor(op).TransportErrorCounter.Inc()
		return nil, transportErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		transportErr := &TransportError{Operation: op, Err: errors.Wrap(err, "reading response body")}
		c.logFailure(ctx, op, transportErr)
		metricsFor(op).TransportErrorCounter.Inc()
		return nil, transportErr
	}

	callDurationHistogram.Update(float64(time.Since(startTime).Milliseconds()))

	decoded, err := decodeEnvelope(body)
	if err != nil {
		protocolErr := &ProtocolError{Operation: op, Reason: err.Error()}
		c.logFailure(ctx, op, protocolErr)
		metricsFor(op).ProtocolErrorCounter.Inc()
		return nil, protocolErr
	}

	if fault := decoded.Body.Fault; fault != nil {
		err := c.faultError(ctx, op, fault)
		if _, ok := err.(*RemoteError); ok {
			metricsFor(op).RemoteErrorCounter.Inc()
		} else {
			metricsFor(op).ProtocolErrorCounter.Inc()
		}
		return nil, err
	}

	result := &RawResult{Operation: op}
	switch op {
	case OpRegister:
		if decoded.Body.RegisterResponse != nil {
			result.Register = decoded.Body.RegisterResponse.RegisterResult
		}
	case OpProcess:
		if decoded.Body.ProcessResponse != nil {
			result.Process = decoded.Body.ProcessResponse.ProcessResult
		}
	case OpQuery:
		if decoded.Body.QueryResponse != nil {
			result.Query = decoded.Body.QueryResponse.QueryResult
		}
	}

	if result.Register == nil && result.Process == nil && result.Query == nil {
		protocolErr := &ProtocolError{Operation: op, Reason: "response body carries no " + string(op) + " result"}
		c.logFailure(ctx, op, protocolErr)
		metricsFor(op).ProtocolErrorCounter.Inc()
		return nil, protocolErr
	}

	metricsFor(op).SuccessCounter.Inc()
	return result, nil
}

// faultError maps a SOAP fault to the error taxonomy. A fault carrying an
// exception detail is an explicit rejection by the processor; one without
// detail means the response shape is off contract.
func (c *Client) faultError(ctx context.Context, op Operation, fault *soapFault) error {
	if fault.Detail == nil || len(fault.Detail.Exceptions) == 0 {
		protocolErr := &ProtocolError{Operation: op, Reason: "fault without detail: " + fault.Reason}
		c.logFailure(ctx, op, protocolErr)
		return protocolErr
	}

	var remoteErr *RemoteError
	for _, exception := range fault.Detail.Exceptions {
		err := &RemoteError{
			Operation:      op,
			Type:           exception.XMLName.Local,
			Message:        exception.Message,
			ResponseCode:   exception.Result.ResponseCode,
			ResponseSource: exception.Result.ResponseSource,
			ResponseText:   exception.Result.ResponseText,
		}
		c.logger.ErrorContext(ctx, "Processor call failed",
			"operation", op,
			"type", err.Type,
			"message", err.Message,
			"responseCode", err.ResponseCode,
			"responseSource", err.ResponseSource,
			"responseText", err.ResponseText,
		)
		if remoteErr == nil {
			remoteErr = err
		}
	}
	return remoteErr
}

func (c *Client) logFailure(ctx context.Context, op Operation, err error) {
	c.logger.ErrorContext(ctx, "Processor call failed", "operation", op, "error", err)
}
