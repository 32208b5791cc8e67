package protocol

// CallbackUpdate is the body of a CALLBACK_UPDATE message.
// Callbacks are unidirectional: requestId=0, status=0, flags=0.
type CallbackUpdate struct {
	UpdateType uint16
	AccountNo  int32
	Currency   uint16
	NewBalance float64
	Info       string
}

// EncodeCallbackUpdate builds a full Callback message.
func EncodeCallbackUpdate(c CallbackUpdate) (*Message, error) {
	m := &Message{}
	m.Init(48)
	m.putUint16(c.UpdateType)
	m.putInt32(c.AccountNo)
	m.putUint16(c.Currency)
	m.putDouble(c.NewBalance)
	if err := m.putString(c.Info); err != nil {
		return nil, err
	}
	m.putHeader(Callback, OpCallbackUpdate, 0, StatusOK, 0)
	return m, nil
}

// DecodeCallbackUpdate reads the body of a Callback message.
func DecodeCallbackUpdate(m *Message) (CallbackUpdate, error) {
	var c CallbackUpdate
	var err error
	if c.UpdateType, err = m.getUint16(); err != nil {
		return c, err
	}
	if c.AccountNo, err = m.getInt32(); err != nil {
		return c, err
	}
	if c.Currency, err = m.getUint16(); err != nil {
		return c, err
	}
	if c.NewBalance, err = m.getDouble(); err != nil {
		return c, err
	}
	if c.Info, err = m.getString(); err != nil {
		return c, err
	}
	return c, nil
}
