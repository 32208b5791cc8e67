package protocol

// This file encodes and decodes Request bodies, one pair of functions per
// op code, field order matching the wire table.

// OpenRequest is the body of an OPEN request.
type OpenRequest struct {
	Name     string
	Password string
	Currency uint16
	Initial  float64
}

// EncodeOpenRequest builds a full OPEN request message.
func EncodeOpenRequest(requestID uint64, flags uint16, r OpenRequest) (*Message, error) {
	m := &Message{}
	m.Init(64)
	if err := m.putString(r.Name); err != nil {
		return nil, err
	}
	if err := m.putPassword16(r.Password); err != nil {
		return nil, err
	}
	m.putUint16(r.Currency)
	m.putDouble(r.Initial)
	m.putHeader(Request, OpOpen, flags, StatusOK, requestID)
	return m, nil
}

// DecodeOpenRequest reads the body of an OPEN request. m must already be
// positioned at the start of the body (e.g. freshly Decoded).
func DecodeOpenRequest(m *Message) (OpenRequest, error) {
	var r OpenRequest
	var err error
	if r.Name, err = m.getString(); err != nil {
		return r, err
	}
	if r.Password, err = m.getPassword16(); err != nil {
		return r, err
	}
	if r.Currency, err = m.getUint16(); err != nil {
		return r, err
	}
	if r.Initial, err = m.getDouble(); err != nil {
		return r, err
	}
	return r, nil
}

// AccountRequest is the body shared by CLOSE and QUERY_BALANCE requests.
type AccountRequest struct {
	Name      string
	AccountNo int32
	Password  string
}

func encodeAccountRequest(requestID uint64, flags uint16, op uint16, r AccountRequest) (*Message, error) {
	m := &Message{}
	m.Init(48)
	if err := m.putString(r.Name); err != nil {
		return nil, err
	}
	m.putInt32(r.AccountNo)
	if err := m.putPassword16(r.Password); err != nil {
		return nil, err
	}
	m.putHeader(Request, op, flags, StatusOK, requestID)
	return m, nil
}

func decodeAccountRequest(m *Message) (AccountRequest, error) {
	var r AccountRequest
	var err error
	if r.Name, err = m.getString(); err != nil {
		return r, err
	}
	if r.AccountNo, err = m.getInt32(); err != nil {
		return r, err
	}
	if r.Password, err = m.getPassword16(); err != nil {
		return r, err
	}
	return r, nil
}

// EncodeCloseRequest builds a full CLOSE request message.
func EncodeCloseRequest(requestID uint64, flags uint16, r AccountRequest) (*Message, error) {
	return encodeAccountRequest(requestID, flags, OpClose, r)
}

// DecodeCloseRequest reads the body of a CLOSE request.
func DecodeCloseRequest(m *Message) (AccountRequest, error) { return decodeAccountRequest(m) }

// EncodeQueryBalanceRequest builds a full QUERY_BALANCE request message.
func EncodeQueryBalanceRequest(requestID uint64, flags uint16, r AccountRequest) (*Message, error) {
	return encodeAccountRequest(requestID, flags, OpQueryBalance, r)
}

// DecodeQueryBalanceRequest reads the body of a QUERY_BALANCE request.
func DecodeQueryBalanceRequest(m *Message) (AccountRequest, error) { return decodeAccountRequest(m) }

// AmountRequest is the body shared by DEPOSIT and WITHDRAW requests.
type AmountRequest struct {
	Name      string
	AccountNo int32
	Password  string
	Currency  uint16
	Amount    float64
}

func encodeAmountRequest(requestID uint64, flags uint16, op uint16, r AmountRequest) (*Message, error) {
	m := &Message{}
	m.Init(64)
	if err := m.putString(r.Name); err != nil {
		return nil, err
	}
	m.putInt32(r.AccountNo)
	if err := m.putPassword16(r.Password); err != nil {
		return nil, err
	}
	m.putUint16(r.Currency)
	m.putDouble(r.Amount)
	m.putHeader(Request, op, flags, StatusOK, requestID)
	return m, nil
}

func decodeAmountRequest(m *Message) (AmountRequest, error) {
	var r AmountRequest
	var err error
	if r.Name, err = m.getString(); err != nil {
		return r, err
	}
	if r.AccountNo, err = m.getInt32(); err != nil {
		return r, err
	}
	if r.Password, err = m.getPassword16(); err != nil {
		return r, err
	}
	if r.Currency, err = m.getUint16(); err != nil {
		return r, err
	}
	if r.Amount, err = m.getDouble(); err != nil {
		return r, err
	}
	return r, nil
}

// EncodeDepositRequest builds a full DEPOSIT request message.
func EncodeDepositRequest(requestID uint64, flags uint16, r AmountRequest) (*Message, error) {
	return encodeAmountRequest(requestID, flags, OpDeposit, r)
}

// DecodeDepositRequest reads the body of a DEPOSIT request.
func DecodeDepositRequest(m *Message) (AmountRequest, error) { return decodeAmountRequest(m) }

// EncodeWithdrawRequest builds a full WITHDRAW request message.
func EncodeWithdrawRequest(requestID uint64, flags uint16, r AmountRequest) (*Message, error) {
	return encodeAmountRequest(requestID, flags, OpWithdraw, r)
}

// DecodeWithdrawRequest reads the body of a WITHDRAW request.
func DecodeWithdrawRequest(m *Message) (AmountRequest, error) { return decodeAmountRequest(m) }

// TransferRequest is the body of a TRANSFER request.
type TransferRequest struct {
	Name      string
	FromAcc   int32
	Password  string
	ToAcc     int32
	Currency  uint16
	Amount    float64
}

// EncodeTransferRequest builds a full TRANSFER request message.
func EncodeTransferRequest(requestID uint64, flags uint16, r TransferRequest) (*Message, error) {
	m := &Message{}
	m.Init(64)
	if err := m.putString(r.Name); err != nil {
		return nil, err
	}
	m.putInt32(r.FromAcc)
	if err := m.putPassword16(r.Password); err != nil {
		return nil, err
	}
	m.putInt32(r.ToAcc)
	m.putUint16(r.Currency)
	m.putDouble(r.Amount)
	m.putHeader(Request, OpTransfer, flags, StatusOK, requestID)
	return m, nil
}

// DecodeTransferRequest reads the body of a TRANSFER request.
func DecodeTransferRequest(m *Message) (TransferRequest, error) {
	var r TransferRequest
	var err error
	if r.Name, err = m.getString(); err != nil {
		return r, err
	}
	if r.FromAcc, err = m.getInt32(); err != nil {
		return r, err
	}
	if r.Password, err = m.getPassword16(); err != nil {
		return r, err
	}
	if r.ToAcc, err = m.getInt32(); err != nil {
		return r, err
	}
	if r.Currency, err = m.getUint16(); err != nil {
		return r, err
	}
	if r.Amount, err = m.getDouble(); err != nil {
		return r, err
	}
	return r, nil
}

// MonitorRegisterRequest is the body of a MONITOR_REGISTER request.
type MonitorRegisterRequest struct {
	Seconds uint16
}

// EncodeMonitorRegisterRequest builds a full MONITOR_REGISTER request message.
func EncodeMonitorRegisterRequest(requestID uint64, flags uint16, r MonitorRegisterRequest) (*Message, error) {
	m := &Message{}
	m.Init(16)
	m.putUint16(r.Seconds)
	m.putHeader(Request, OpMonitorRegister, flags, StatusOK, requestID)
	return m, nil
}

// DecodeMonitorRegisterRequest reads the body of a MONITOR_REGISTER request.
func DecodeMonitorRegisterRequest(m *Message) (MonitorRegisterRequest, error) {
	var r MonitorRegisterRequest
	var err error
	if r.Seconds, err = m.getUint16(); err != nil {
		return r, err
	}
	return r, nil
}
