package netaxept

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nets-gateway/internal/config"
	"nets-gateway/internal/money"
)

func testGateway() config.Gateway {
	return config.Gateway{
		Mode:       config.ModeTest,
		MerchantID: "12000001",
		Token:      "secret",
		Language:   "en_GB",
	}
}

func testOrder() OrderData {
	return OrderData{
		OrderNumber:    "4711",
		CustomerNumber: "42",
		Email:          "payer@example.com",
		Charge:         money.New(12050, "NOK"),
	}
}

func testURLs() RedirectURLs {
	return RedirectURLs{
		Return: "https://shop.example.com/return?capture=1",
		Cancel: "https://shop.example.com/cancel",
	}
}

func TestBuildRegisterRequest(t *testing.T) {
	request := BuildRegisterRequest(testGateway(), testOrder(), testURLs())

	require.NotNil(t, request.Order)
	assert.Equal(t, int64(12050), request.Order.Amount)
	assert.Equal(t, "NOK", request.Order.CurrencyCode)
	assert.Equal(t, "4711", request.Order.OrderNumber)

	require.NotNil(t, request.Terminal)
	assert.Equal(t, "en_GB", *request.Terminal.Language)
	assert.Equal(t, "https://shop.example.com/return?capture=1", *request.Terminal.RedirectUrl)
	assert.Equal(t, "https://shop.example.com/cancel", *request.Terminal.RedirectOnError)

	require.NotNil(t, request.Customer)
	assert.Equal(t, "42", *request.Customer.CustomerNumber)
	assert.Equal(t, "payer@example.com", *request.Customer.Email)

	require.NotNil(t, request.Environment)
	assert.Equal(t, "Go", *request.Environment.WebServicePlatform)

	// Nothing configured, nothing set.
	assert.Nil(t, request.TransactionID)
	assert.Nil(t, request.Terminal.OrderDescription)
	assert.Nil(t, request.Recurring)
	assert.Nil(t, request.CardInfo)
	assert.Nil(t, request.AvtaleGiro)
}

func TestBuildRegisterRequest_OrderDescription(t *testing.T) {
	tests := []struct {
		name     string
		template string
		expected *string
	}{
		{
			name:     "template with placeholders resolves",
			template: "Order [order:number]",
			expected: strPtr("Order 4711"),
		},
		{
			name:     "template without placeholders is treated as unresolved",
			template: "Thank you for shopping",
			expected: nil,
		},
		{
			name:     "empty template",
			template: "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := testGateway()
			gw.OrderDescriptionTemplate = tt.template

			request := BuildRegisterRequest(gw, testOrder(), testURLs())
			if tt.expected == nil {
				assert.Nil(t, request.Terminal.OrderDescription)
			} else {
				require.NotNil(t, request.Terminal.OrderDescription)
				assert.Equal(t, *tt.expected, *request.Terminal.OrderDescription)
			}
		})
	}
}

func TestBuildRegisterRequest_TransactionID(t *testing.T) {
	gw := testGateway()
	gw.TransactionIDTemplate = "shop-[order:number]"

	request := BuildRegisterRequest(gw, testOrder(), testURLs())
	require.NotNil(t, request.TransactionID)
	assert.Equal(t, "shop-4711", *request.TransactionID)
}

func TestBuildProcessRequest_OmittedAmount(t *testing.T) {
	request := BuildProcessRequest("123456789", OpCapture, nil, "")

	assert.Nil(t, request.TransactionAmount)

	// Absent must stay distinguishable from zero on the wire.
	encoded, err := xml.Marshal(request)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "TransactionAmount")
	assert.Contains(t, string(encoded), "<Operation>CAPTURE</Operation>")
	assert.Contains(t, string(encoded), "<TransactionId>123456789</TransactionId>")
}

func TestBuildProcessRequest_ExplicitAmount(t *testing.T) {
	amount := int64(5000)
	request := BuildProcessRequest("123456789", OpCredit, &amount, "recon-1")

	require.NotNil(t, request.TransactionAmount)
	assert.Equal(t, int64(5000), *request.TransactionAmount)
	require.NotNil(t, request.TransactionReconRef)
	assert.Equal(t, "recon-1", *request.TransactionReconRef)
}

func TestProcessOperation_Valid(t *testing.T) {
	for _, op := range []ProcessOperation{OpAuth, OpSale, OpCapture, OpCredit, OpAnnul} {
		assert.True(t, op.Valid(), string(op))
	}
	assert.False(t, ProcessOperation("REFUND").Valid())
	assert.False(t, ProcessOperation("").Valid())
	assert.False(t, ProcessOperation("capture").Valid())
}

func strPtr(s string) *string {
	return &s
}
