package protocol

// This file encodes and decodes Reply bodies. On any non-OK status the
// reply body is empty — callers encode a failure reply with
// EncodeFailureReply instead of any of the per-op Encode*Reply functions.

// EncodeFailureReply builds a Reply with an empty body and the given
// non-OK status, echoing opCode/flags/requestID from the request.
func EncodeFailureReply(requestID uint64, opCode, flags, status uint16) *Message {
	m := &Message{}
	m.Init(0)
	m.putHeader(Reply, opCode, flags, status, requestID)
	return m
}

// OpenReply is the body of an OPEN reply.
type OpenReply struct {
	AccountNo int32
	Balance   float64
}

// EncodeOpenReply builds a successful OPEN reply message.
func EncodeOpenReply(requestID uint64, flags uint16, r OpenReply) *Message {
	m := &Message{}
	m.Init(16)
	m.putInt32(r.AccountNo)
	m.putDouble(r.Balance)
	m.putHeader(Reply, OpOpen, flags, StatusOK, requestID)
	return m
}

// DecodeOpenReply reads the body of a successful OPEN reply.
func DecodeOpenReply(m *Message) (OpenReply, error) {
	var r OpenReply
	var err error
	if r.AccountNo, err = m.getInt32(); err != nil {
		return r, err
	}
	if r.Balance, err = m.getDouble(); err != nil {
		return r, err
	}
	return r, nil
}

// InfoReply is the body shared by CLOSE and MONITOR_REGISTER replies.
type InfoReply struct {
	Info string
}

func encodeInfoReply(requestID uint64, flags uint16, op uint16, r InfoReply) (*Message, error) {
	m := &Message{}
	m.Init(32)
	if err := m.putString(r.Info); err != nil {
		return nil, err
	}
	m.putHeader(Reply, op, flags, StatusOK, requestID)
	return m, nil
}

func decodeInfoReply(m *Message) (InfoReply, error) {
	var r InfoReply
	var err error
	if r.Info, err = m.getString(); err != nil {
		return r, err
	}
	return r, nil
}

// EncodeCloseReply builds a successful CLOSE reply message.
func EncodeCloseReply(requestID uint64, flags uint16, r InfoReply) (*Message, error) {
	return encodeInfoReply(requestID, flags, OpClose, r)
}

// DecodeCloseReply reads the body of a successful CLOSE reply.
func DecodeCloseReply(m *Message) (InfoReply, error) { return decodeInfoReply(m) }

// EncodeMonitorRegisterReply builds a successful MONITOR_REGISTER reply message.
func EncodeMonitorRegisterReply(requestID uint64, flags uint16, r InfoReply) (*Message, error) {
	return encodeInfoReply(requestID, flags, OpMonitorRegister, r)
}

// DecodeMonitorRegisterReply reads the body of a successful MONITOR_REGISTER reply.
func DecodeMonitorRegisterReply(m *Message) (InfoReply, error) { return decodeInfoReply(m) }

// BalanceReply is the body of a successful DEPOSIT or WITHDRAW reply.
type BalanceReply struct {
	NewBalance float64
}

func encodeBalanceReply(requestID uint64, flags uint16, op uint16, r BalanceReply) *Message {
	m := &Message{}
	m.Init(8)
	m.putDouble(r.NewBalance)
	m.putHeader(Reply, op, flags, StatusOK, requestID)
	return m
}

func decodeBalanceReply(m *Message) (BalanceReply, error) {
	var r BalanceReply
	var err error
	if r.NewBalance, err = m.getDouble(); err != nil {
		return r, err
	}
	return r, nil
}

// EncodeDepositReply builds a successful DEPOSIT reply message.
func EncodeDepositReply(requestID uint64, flags uint16, r BalanceReply) *Message {
	return encodeBalanceReply(requestID, flags, OpDeposit, r)
}

// DecodeDepositReply reads the body of a successful DEPOSIT reply.
func DecodeDepositReply(m *Message) (BalanceReply, error) { return decodeBalanceReply(m) }

// EncodeWithdrawReply builds a successful WITHDRAW reply message.
func EncodeWithdrawReply(requestID uint64, flags uint16, r BalanceReply) *Message {
	return encodeBalanceReply(requestID, flags, OpWithdraw, r)
}

// DecodeWithdrawReply reads the body of a successful WITHDRAW reply.
func DecodeWithdrawReply(m *Message) (BalanceReply, error) { return decodeBalanceReply(m) }

// QueryBalanceReply is the body of a successful QUERY_BALANCE reply.
type QueryBalanceReply struct {
	Currency uint16
	Balance  float64
}

// EncodeQueryBalanceReply builds a successful QUERY_BALANCE reply message.
func EncodeQueryBalanceReply(requestID uint64, flags uint16, r QueryBalanceReply) *Message {
	m := &Message{}
	m.Init(16)
	m.putUint16(r.Currency)
	m.putDouble(r.Balance)
	m.putHeader(Reply, OpQueryBalance, flags, StatusOK, requestID)
	return m
}

// DecodeQueryBalanceReply reads the body of a successful QUERY_BALANCE reply.
func DecodeQueryBalanceReply(m *Message) (QueryBalanceReply, error) {
	var r QueryBalanceReply
	var err error
	if r.Currency, err = m.getUint16(); err != nil {
		return r, err
	}
	if r.Balance, err = m.getDouble(); err != nil {
		return r, err
	}
	return r, nil
}

// TransferReply is the body of a successful TRANSFER reply.
type TransferReply struct {
	FromNewBalance float64
	ToNewBalance   float64
}

// EncodeTransferReply builds a successful TRANSFER reply message.
func EncodeTransferReply(requestID uint64, flags uint16, r TransferReply) *Message {
	m := &Message{}
	m.Init(16)
	m.putDouble(r.FromNewBalance)
	m.putDouble(r.ToNewBalance)
	m.putHeader(Reply, OpTransfer, flags, StatusOK, requestID)
	return m
}

// DecodeTransferReply reads the body of a successful TRANSFER reply.
func DecodeTransferReply(m *Message) (TransferReply, error) {
	var r TransferReply
	var err error
	if r.FromNewBalance, err = m.getDouble(); err != nil {
		return r, err
	}
	if r.ToNewBalance, err = m.getDouble(); err != nil {
		return r, err
	}
	return r, nil
}
