// Package netaxept talks to the Netaxept payment processor: it assembles
// the Register/Process/Query request shapes, carries them over the SOAP
// endpoint, and interprets what comes back. Optional request fields are
// pointers so that absent and empty stay distinguishable on the wire.
package netaxept

type Operation string

const (
	OpRegister Operation = "Register"
	OpProcess  Operation = "Process"
	OpQuery    Operation = "Query"
)

// ProcessOperation is a lifecycle action executed against a registered
// transaction.
type ProcessOperation string

const (
	OpAuth    ProcessOperation = "AUTH"
	OpSale    ProcessOperation = "SALE"
	OpCapture ProcessOperation = "CAPTURE"
	OpCredit  ProcessOperation = "CREDIT"
	OpAnnul   ProcessOperation = "ANNUL"
)

// Valid reports whether op is one of the five actions the processor
// accepts. Anything else must be rejected, never coerced.
func (op ProcessOperation) Valid() bool {
	switch op {
	case OpAuth, OpSale, OpCapture, OpCredit, OpAnnul:
		return true
	}
	return false
}

// Envelope is the authentication wrapper every call carries.
type Envelope struct {
	Token      string
	MerchantID string
	Request    any
}

type Order struct {
	Amount                  int64   `xml:"Amount"`
	CurrencyCode            string  `xml:"CurrencyCode"`
	Force3DSecure           *bool   `xml:"Force3DSecure,omitempty"`
	Goods                   []Item  `xml:"Goods>Item,omitempty"`
	OrderNumber             string  `xml:"OrderNumber"`
	UpdateStoredPaymentInfo *bool   `xml:"UpdateStoredPaymentInfo,omitempty"`
}

type Item struct {
	Amount        int64   `xml:"Amount"`
	ArticleNumber string  `xml:"ArticleNumber"`
	Discount      *int64  `xml:"Discount,omitempty"`
	Handling      *bool   `xml:"Handling,omitempty"`
	IsVatIncluded *bool   `xml:"IsVatIncluded,omitempty"`
	Quantity      int     `xml:"Quantity"`
	Shipping      *bool   `xml:"Shipping,omitempty"`
	Title         string  `xml:"Title"`
	VAT           *int64  `xml:"VAT,omitempty"`
}

type Terminal struct {
	AutoAuth          *bool   `xml:"AutoAuth,omitempty"`
	PaymentMethodList *string `xml:"PaymentMethodList,omitempty"`
	Language          *string `xml:"Language,omitempty"`
	OrderDescription  *string `xml:"OrderDescription,omitempty"`
	RedirectOnError   *string `xml:"RedirectOnError,omitempty"`
	RedirectUrl       *string `xml:"RedirectUrl,omitempty"`
}

type Customer struct {
	Address1                  *string `xml:"Address1,omitempty"`
	Address2                  *string `xml:"Address2,omitempty"`
	CompanyName               *string `xml:"CompanyName,omitempty"`
	CompanyRegistrationNumber *string `xml:"CompanyRegistrationNumber,omitempty"`
	Country                   *string `xml:"Country,omitempty"`
	CustomerNumber            *string `xml:"CustomerNumber,omitempty"`
	Email                     *string `xml:"Email,omitempty"`
	FirstName                 *string `xml:"FirstName,omitempty"`
	LastName                  *string `xml:"LastName,omitempty"`
	PhoneNumber               *string `xml:"PhoneNumber,omitempty"`
	Postcode                  *string `xml:"Postcode,omitempty"`
	SocialSecurityNumber      *string `xml:"SocialSecurityNumber,omitempty"`
	Town                      *string `xml:"Town,omitempty"`
}

type Environment struct {
	Language           *string `xml:"Language,omitempty"`
	OS                 *string `xml:"OS,omitempty"`
	WebServicePlatform *string `xml:"WebServicePlatform,omitempty"`
}

type Recurring struct {
	ExpiryDate *string `xml:"ExpiryDate,omitempty"`
	Frequency  *int    `xml:"Frequency,omitempty"`
	Type       *string `xml:"Type,omitempty"`
	PanHash    *string `xml:"PanHash,omitempty"`
}

type CardInfo struct {
	PAN        *string `xml:"PAN,omitempty"`
	ExpiryDate *string `xml:"ExpiryDate,omitempty"`
}

type DnBNorDirectPayment struct {
	CustomerNumber *string `xml:"CustomerNumber,omitempty"`
}

type MicroPayment struct {
	OrderGroupID *string `xml:"OrderGroupId,omitempty"`
}

type AvtaleGiro struct {
	KID *string `xml:"Kid,omitempty"`
}

// RegisterRequest is built once per checkout attempt and immutable after
// construction. Only Order and Environment are always present.
type RegisterRequest struct {
	AvtaleGiro          *AvtaleGiro          `xml:"AvtaleGiro,omitempty"`
	CardInfo            *CardInfo            `xml:"CardInfo,omitempty"`
	Customer            *Customer            `xml:"Customer,omitempty"`
	Description         *string              `xml:"Description,omitempty"`
	DnBNorDirectPayment *DnBNorDirectPayment `xml:"DnBNorDirectPayment,omitempty"`
	Environment         *Environment         `xml:"Environment,omitempty"`
	MicroPayment        *MicroPayment        `xml:"MicroPayment,omitempty"`
	Order               *Order               `xml:"Order,omitempty"`
	Recurring           *Recurring           `xml:"Recurring,omitempty"`
	ServiceType         *string              `xml:"ServiceType,omitempty"`
	Terminal            *Terminal            `xml:"Terminal,omitempty"`
	TransactionID       *string              `xml:"TransactionId,omitempty"`
	TransactionReconRef *string              `xml:"TransactionReconRef,omitempty"`
}

type ProcessRequest struct {
	Description         *string          `xml:"Description,omitempty"`
	Operation           ProcessOperation `xml:"Operation"`
	TransactionAmount   *int64           `xml:"TransactionAmount,omitempty"`
	TransactionID       string           `xml:"TransactionId"`
	TransactionReconRef *string          `xml:"TransactionReconRef,omitempty"`
}

type QueryRequest struct {
	TransactionID string `xml:"TransactionId"`
}

// RegisterResult is the raw Register response payload.
type RegisterResult struct {
	TransactionID string `xml:"TransactionId"`
}

// ProcessResult is the raw Process response payload.
type ProcessResult struct {
	Operation      string `xml:"Operation"`
	ResponseCode   string `xml:"ResponseCode"`
	ResponseSource string `xml:"ResponseSource"`
	ResponseText   string `xml:"ResponseText"`
	TransactionID  string `xml:"TransactionId"`
	ExecutionTime  string `xml:"ExecutionTime"`
}

// QueryResult is the raw Query response payload. The processor reports
// failed payment attempts through ErrorLog rather than a fault.
type QueryResult struct {
	TransactionID string        `xml:"TransactionId"`
	OrderNumber   string        `xml:"OrderInformation>OrderNumber"`
	Summary       *QuerySummary `xml:"Summary"`
	ErrorLog      *ErrorLog     `xml:"ErrorLog"`
}

type QuerySummary struct {
	AmountCaptured  int64 `xml:"AmountCaptured"`
	AmountCredited  int64 `xml:"AmountCredited"`
	Annulled        bool  `xml:"Annulled"`
	Authorized      bool  `xml:"Authorized"`
	AuthorizedAmount int64 `xml:"AuthorizationAmount"`
}

type ErrorLog struct {
	PaymentError *PaymentError `xml:"PaymentError"`
}

type PaymentError struct {
	DateTime       string `xml:"DateTime"`
	Operation      string `xml:"Operation"`
	ResponseCode   string `xml:"ResponseCode"`
	ResponseSource string `xml:"ResponseSource"`
	ResponseText   string `xml:"ResponseText"`
}

// RawResult is the decoded body of a successful call; exactly one field
// matching the operation is set. Callers go through the interpreters
// rather than poking at it directly.
type RawResult struct {
	Operation Operation
	Register  *RegisterResult
	Process   *ProcessResult
	Query     *QueryResult
}

// RemoteTransactionResult is the interpreted outcome of a Query: either a
// settled view of the transaction or the payment error the processor
// logged. Never partially populated.
type RemoteTransactionResult struct {
	TransactionID  string
	ResponseCode   string
	Authorized     bool
	AmountCaptured int64
	AmountCredited int64
	Annulled       bool

	Failed         bool
	ErrorType      string
	Message        string
	ResponseSource string
	ResponseText   string
}
