package netaxept

import (
	"strings"

	"nets-gateway/internal/config"
	"nets-gateway/internal/money"
)

const webServicePlatform = "Go"

// OrderData is the slice of the host order a register call needs.
type OrderData struct {
	OrderNumber    string
	CustomerNumber string
	Email          string
	Charge         money.Money
}

// RedirectURLs are the caller-supplied return and cancel targets; the
// return URL carries the capture flag.
type RedirectURLs struct {
	Return string
	Cancel string
}

// ResolveTemplate substitutes [order:...] placeholders against order
// data. Unknown placeholders stay as-is so the caller can detect a
// template that resolved to nothing.
func ResolveTemplate(template string, ord OrderData) string {
	return strings.NewReplacer(
		"[order:number]", ord.OrderNumber,
		"[order:amount]", ord.Charge.Format(),
		"[order:currency]", ord.Charge.Currency,
		"[order:customer-number]", ord.CustomerNumber,
		"[order:email]", ord.Email,
	).Replace(template)
}

// BuildRegisterRequest assembles the nested register shape from the
// merchant settings, the order and the redirect targets. Pure; the
// result is built once per checkout attempt and not mutated after.
func BuildRegisterRequest(gateway config.Gateway, ord OrderData, urls RedirectURLs) RegisterRequest {
	order := &Order{
		Amount:       ord.Charge.Amount,
		CurrencyCode: ord.Charge.Currency,
		OrderNumber:  ord.OrderNumber,
	}

	environment := &Environment{
		WebServicePlatform: ptr(webServicePlatform),
	}

	terminal := &Terminal{
		RedirectOnError: ptr(urls.Cancel),
		RedirectUrl:     ptr(urls.Return),
	}
	if gateway.Language != "" {
		terminal.Language = ptr(gateway.Language)
	}

	// A description template that resolves to its own raw text did not
	// substitute anything meaningful; the terminal then shows no
	// description at all.
	if gateway.OrderDescriptionTemplate != "" {
		resolved := ResolveTemplate(gateway.OrderDescriptionTemplate, ord)
		if resolved != gateway.OrderDescriptionTemplate {
			terminal.OrderDescription = ptr(resolved)
		}
	}

	customer := &Customer{}
	if ord.CustomerNumber != "" {
		customer.CustomerNumber = ptr(ord.CustomerNumber)
	}
	if ord.Email != "" {
		customer.Email = ptr(ord.Email)
	}

	request := RegisterRequest{
		Customer:    customer,
		Environment: environment,
		Order:       order,
		Terminal:    terminal,
	}

	// By default the processor assigns the transaction id; a template
	// that resolves non-empty overrides it with a client-chosen id.
	if resolved := ResolveTemplate(gateway.TransactionIDTemplate, ord); resolved != "" {
		request.TransactionID = ptr(resolved)
	}

	return request
}

// BuildProcessRequest assembles a lifecycle action against a registered
// transaction. A nil amount is left off the wire entirely, which the
// processor reads as "the full remaining balance".
func BuildProcessRequest(remoteID string, op ProcessOperation, amount *int64, reconRef string) ProcessRequest {
	request := ProcessRequest{
		Operation:     op,
		TransactionID: remoteID,
	}
	if amount != nil {
		value := *amount
		request.TransactionAmount = &value
	}
	if reconRef != "" {
		request.TransactionReconRef = ptr(reconRef)
	}
	return request
}

func BuildQueryRequest(remoteID string) QueryRequest {
	return QueryRequest{TransactionID: remoteID}
}

func ptr[T any](v T) *T {
	return &v
}
