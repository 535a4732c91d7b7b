package netaxept

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nets-gateway/internal/config"
)

func testClient() *Client {
	return NewClient(
		config.Gateway{Mode: config.ModeTest, MerchantID: "12000001", Token: "secret"},
		config.Client{TimeoutMs: 2000},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func testEnvelope(request any) Envelope {
	return Envelope{Token: "secret", MerchantID: "12000001", Request: request}
}

const registerResponseXML = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <RegisterResponse xmlns="http://epayment.bbs.no/">
      <RegisterResult>
        <TransactionId>b127f98b77f741429b7b8b9f316607a1</TransactionId>
      </RegisterResult>
    </RegisterResponse>
  </soap:Body>
</soap:Envelope>`

const processResponseXML = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ProcessResponse xmlns="http://epayment.bbs.no/">
      <ProcessResult>
        <Operation>CAPTURE</Operation>
        <ResponseCode>OK</ResponseCode>
        <TransactionId>b127f98b77f741429b7b8b9f316607a1</TransactionId>
      </ProcessResult>
    </ProcessResponse>
  </soap:Body>
</soap:Envelope>`

const faultResponseXML = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <soap:Fault>
      <faultcode>soap:Server</faultcode>
      <faultstring>Unable to process request</faultstring>
      <detail>
        <BBSException xmlns="http://epayment.bbs.no/">
          <Message>Unable to authorize</Message>
          <Result>
            <ResponseCode>99</ResponseCode>
            <ResponseSource>Netaxept</ResponseSource>
            <ResponseText>Auth Reg Comp Failure</ResponseText>
          </Result>
        </BBSException>
      </detail>
    </soap:Fault>
  </soap:Body>
</soap:Envelope>`

const faultWithoutDetailXML = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <soap:Fault>
      <faultcode>soap:Server</faultcode>
      <faultstring>Internal error</faultstring>
    </soap:Fault>
  </soap:Body>
</soap:Envelope>`

func TestClient_Invoke_Register(t *testing.T) {
	defer gock.Off()
	gock.New("https://test.epayment.nets.eu").
		Post("/netaxept.svc").
		Reply(200).
		BodyString(registerResponseXML)

	request := BuildRegisterRequest(
		config.Gateway{Mode: config.ModeTest, MerchantID: "12000001", Token: "secret"},
		OrderData{OrderNumber: "4711"},
		RedirectURLs{Return: "https://shop.example.com/return", Cancel: "https://shop.example.com/cancel"},
	)

	raw, err := testClient().Invoke(context.Background(), OpRegister, testEnvelope(&request))
	require.NoError(t, err)
	require.NotNil(t, raw.Register)
	assert.Equal(t, "b127f98b77f741429b7b8b9f316607a1", raw.Register.TransactionID)
	assert.True(t, gock.IsDone())
}

func TestClient_Invoke_Process(t *testing.T) {
	defer gock.Off()
	gock.New("https://test.epayment.nets.eu").
		Post("/netaxept.svc").
		Reply(200).
		BodyString(processResponseXML)

	request := BuildProcessRequest("b127f98b77f741429b7b8b9f316607a1", OpCapture, nil, "")

	raw, err := testClient().Invoke(context.Background(), OpProcess, testEnvelope(&request))
	require.NoError(t, err)
	require.NotNil(t, raw.Process)
	assert.Equal(t, "OK", raw.Process.ResponseCode)
	assert.True(t, gock.IsDone())
}

func TestClient_Invoke_TransportError(t *testing.T) {
	defer gock.Off()
	gock.New("https://test.epayment.nets.eu").
		Post("/netaxept.svc").
		ReplyError(&net.OpError{Op: "dial", Err: errors.New("connection refused")})

	request := BuildQueryRequest("b127f98b77f741429b7b8b9f316607a1")

	_, err := testClient().Invoke(context.Background(), OpQuery, testEnvelope(&request))
	require.Error(t, err)

	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
	assert.Equal(t, OpQuery, transportErr.Operation)
}

func TestClient_Invoke_FaultWithDetail(t *testing.T) {
	defer gock.Off()
	gock.New("https://test.epayment.nets.eu").
		Post("/netaxept.svc").
		Reply(500).
		BodyString(faultResponseXML)

	request := BuildProcessRequest("b127f98b77f741429b7b8b9f316607a1", OpAuth, nil, "")

	_, err := testClient().Invoke(context.Background(), OpProcess, testEnvelope(&request))
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, OpProcess, remoteErr.Operation)
	assert.Equal(t, "BBSException", remoteErr.Type)
	assert.Equal(t, "Unable to authorize", remoteErr.Message)
	assert.Equal(t, "99", remoteErr.ResponseCode)
	assert.Equal(t, "Netaxept", remoteErr.ResponseSource)
	assert.Equal(t, "Auth Reg Comp Failure", remoteErr.ResponseText)
}

func TestClient_Invoke_FaultWithoutDetail(t *testing.T) {
	defer gock.Off()
	gock.New("https://test.epayment.nets.eu").
		Post("/netaxept.svc").
		Reply(500).
		BodyString(faultWithoutDetailXML)

	request := BuildQueryRequest("b127f98b77f741429b7b8b9f316607a1")

	_, err := testClient().Invoke(context.Background(), OpQuery, testEnvelope(&request))
	require.Error(t, err)

	var protocolErr *ProtocolError
	assert.ErrorAs(t, err, &protocolErr)
}

func TestClient_Invoke_MalformedBody(t *testing.T) {
	defer gock.Off()
	gock.New("https://test.epayment.nets.eu").
		Post("/netaxept.svc").
		Reply(200).
		BodyString("not xml at all")

	request := BuildQueryRequest("b127f98b77f741429b7b8b9f316607a1")

	_, err := testClient().Invoke(context.Background(), OpQuery, testEnvelope(&request))
	require.Error(t, err)

	var protocolErr *ProtocolError
	assert.ErrorAs(t, err, &protocolErr)
}

func TestClient_Invoke_WrongResultShape(t *testing.T) {
	defer gock.Off()
	// A register response answering a query call is off contract.
	gock.New("https://test.epayment.nets.eu").
		Post("/netaxept.svc").
		Reply(200).
		BodyString(registerResponseXML)

	request := BuildQueryRequest("b127f98b77f741429b7b8b9f316607a1")

	_, err := testClient().Invoke(context.Background(), OpQuery, testEnvelope(&request))
	require.Error(t, err)

	var protocolErr *ProtocolError
	assert.ErrorAs(t, err, &protocolErr)
}

func TestClient_Endpoints(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	testMode := NewClient(config.Gateway{Mode: config.ModeTest}, config.Client{}, logger)
	assert.Equal(t, EndpointTest, testMode.Endpoint())

	liveMode := NewClient(config.Gateway{Mode: config.ModeLive}, config.Client{}, logger)
	assert.Equal(t, EndpointLive, liveMode.Endpoint())
}
