package netaxept

// ResponseCodeOK is the processor's success code.
const ResponseCodeOK = "OK"

// InterpretRegister extracts the remote transaction id assigned (or
// echoed back) by Register. A missing id is a protocol violation, never
// an empty success.
func InterpretRegister(raw *RawResult) (string, error) {
	if raw == nil || raw.Register == nil {
		return "", &ProtocolError{Operation: OpRegister, Reason: "missing register result"}
	}
	if raw.Register.TransactionID == "" {
		return "", &ProtocolError{Operation: OpRegister, Reason: "register result carries no transaction id"}
	}
	return raw.Register.TransactionID, nil
}

// InterpretProcess extracts the response code of a Process call.
func InterpretProcess(raw *RawResult) (string, error) {
	if raw == nil || raw.Process == nil {
		return "", &ProtocolError{Operation: OpProcess, Reason: "missing process result"}
	}
	if raw.Process.ResponseCode == "" {
		return "", &ProtocolError{Operation: OpProcess, Reason: "process result carries no response code"}
	}
	return raw.Process.ResponseCode, nil
}

// InterpretQuery folds the raw Query payload into the tagged result. The
// processor reports a failed attempt through ErrorLog rather than a
// fault, so the failure variant is produced here once and callers never
// re-inspect the raw shape.
func InterpretQuery(raw *RawResult) (RemoteTransactionResult, error) {
	if raw == nil || raw.Query == nil {
		return RemoteTransactionResult{}, &ProtocolError{Operation: OpQuery, Reason: "missing query result"}
	}
	if raw.Query.TransactionID == "" {
		return RemoteTransactionResult{}, &ProtocolError{Operation: OpQuery, Reason: "query result carries no transaction id"}
	}

	result := RemoteTransactionResult{
		TransactionID: raw.Query.TransactionID,
		ResponseCode:  ResponseCodeOK,
	}

	if summary := raw.Query.Summary; summary != nil {
		result.Authorized = summary.Authorized
		result.AmountCaptured = summary.AmountCaptured
		result.AmountCredited = summary.AmountCredited
		result.Annulled = summary.Annulled
	}

	if raw.Query.ErrorLog != nil && raw.Query.ErrorLog.PaymentError != nil {
		paymentError := raw.Query.ErrorLog.PaymentError
		result.Failed = true
		result.ErrorType = "PaymentError"
		result.Message = paymentError.ResponseText
		result.ResponseCode = paymentError.ResponseCode
		result.ResponseSource = paymentError.ResponseSource
		result.ResponseText = paymentError.ResponseText
	}

	return result, nil
}
