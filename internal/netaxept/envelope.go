package netaxept

import (
	"encoding/xml"

	"github.com/pkg/errors"
)

const (
	soapNS    = "http://schemas.xmlsoap.org/soap/envelope/"
	serviceNS = "http://epayment.bbs.no/"
)

type soapEnvelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	SoapNS  string   `xml:"xmlns:soap,attr"`
	Body    soapBody `xml:"soap:Body"`
}

type soapBody struct {
	Call any
}

type registerCall struct {
	XMLName    xml.Name         `xml:"Register"`
	NS         string           `xml:"xmlns,attr"`
	Token      string           `xml:"token"`
	MerchantID string           `xml:"merchantId"`
	Request    *RegisterRequest `xml:"request"`
}

type processCall struct {
	XMLName    xml.Name        `xml:"Process"`
	NS         string          `xml:"xmlns,attr"`
	Token      string          `xml:"token"`
	MerchantID string          `xml:"merchantId"`
	Request    *ProcessRequest `xml:"request"`
}

type queryCall struct {
	XMLName    xml.Name      `xml:"Query"`
	NS         string        `xml:"xmlns,attr"`
	Token      string        `xml:"token"`
	MerchantID string        `xml:"merchantId"`
	Request    *QueryRequest `xml:"request"`
}

func encodeEnvelope(op Operation, env Envelope) ([]byte, error) {
	var call any

	switch op {
	case OpRegister:
		request, ok := env.Request.(*RegisterRequest)
		if !ok {
			return nil, errors.Errorf("request type %T does not match operation %s", env.Request, op)
		}
		call = registerCall{NS: serviceNS, Token: env.Token, MerchantID: env.MerchantID, Request: request}
	case OpProcess:
		request, ok := env.Request.(*ProcessRequest)
		if !ok {
			return nil, errors.Errorf("request type %T does not match operation %s", env.Request, op)
		}
		call = processCall{NS: serviceNS, Token: env.Token, MerchantID: env.MerchantID, Request: request}
	case OpQuery:
		request, ok := env.Request.(*QueryRequest)
		if !ok {
			return nil, errors.Errorf("request type %T does not match operation %s", env.Request, op)
		}
		call = queryCall{NS: serviceNS, Token: env.Token, MerchantID: env.MerchantID, Request: request}
	default:
		return nil, errors.Errorf("unknown operation %s", op)
	}

	body, err := xml.Marshal(soapEnvelope{SoapNS: soapNS, Body: soapBody{Call: call}})
	if err != nil {
		return nil, errors.Wrap(err, "marshalling envelope")
	}

	return append([]byte(xml.Header), body...), nil
}

type responseEnvelope struct {
	Body responseBody `xml:"Body"`
}

type responseBody struct {
	Fault            *soapFault            `xml:"Fault"`
	RegisterResponse *registerResponseBody `xml:"RegisterResponse"`
	ProcessResponse  *processResponseBody  `xml:"ProcessResponse"`
	QueryResponse    *queryResponseBody    `xml:"QueryResponse"`
}

type registerResponseBody struct {
	RegisterResult *RegisterResult `xml:"RegisterResult"`
}

type processResponseBody struct {
	ProcessResult *ProcessResult `xml:"ProcessResult"`
}

type queryResponseBody struct {
	QueryResult *QueryResult `xml:"QueryResult"`
}

type soapFault struct {
	Code   string       `xml:"faultcode"`
	Reason string       `xml:"faultstring"`
	Detail *faultDetail `xml:"detail"`
}

// The fault detail wraps a single exception element whose name is the
// exception type (BBSException, ValidationException, ...). The element
// name is captured rather than enumerated.
type faultDetail struct {
	Exceptions []faultException `xml:",any"`
}

type faultException struct {
	XMLName xml.Name
	Message string `xml:"Message"`
	Result  struct {
		ResponseCode   string `xml:"ResponseCode"`
		ResponseSource string `xml:"ResponseSource"`
		ResponseText   string `xml:"ResponseText"`
	} `xml:"Result"`
}

func decodeEnvelope(body []byte) (*responseEnvelope, error) {
	var decoded responseEnvelope
	if err := xml.Unmarshal(body, &decoded); err != nil {
		return nil, errors.Wrap(err, "unmarshalling envelope")
	}
	return &decoded, nil
}
