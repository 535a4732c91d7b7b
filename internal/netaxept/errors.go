package netaxept

import "fmt"

// TransportError covers network-level failures: connection errors,
// timeouts, anything that kept a well-formed response from arriving.
type TransportError struct {
	Operation Operation
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("netaxept: %s transport failure: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError means the processor answered but not in the shape the
// contract promises.
type ProtocolError struct {
	Operation Operation
	Reason    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("netaxept: %s unexpected response: %s", e.Operation, e.Reason)
}

// RemoteError is an explicit business failure reported by the processor,
// carrying the nested exception detail from the fault.
type RemoteError struct {
	Operation      Operation
	Type           string
	Message        string
	ResponseCode   string
	ResponseSource string
	ResponseText   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("netaxept: %s rejected (%s): %s [code=%s source=%s text=%s]",
		e.Operation, e.Type, e.Message, e.ResponseCode, e.ResponseSource, e.ResponseText)
}
