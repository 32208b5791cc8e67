package protocol

import (
	"testing"
)

func assertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

func requireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestMessage_putGetUint16(t *testing.T) {
	m := &Message{}
	m.Init(8)
	m.putUint16(666)
	m.Rewind()
	v, err := m.getUint16()
	requireNoError(t, err)
	assertEqual(t, uint16(666), v)
}

func TestMessage_putGetUint32(t *testing.T) {
	m := &Message{}
	m.Init(8)
	m.putUint32(130000)
	m.Rewind()
	v, err := m.getUint32()
	requireNoError(t, err)
	assertEqual(t, uint32(130000), v)
}

func TestMessage_putGetInt32Negative(t *testing.T) {
	m := &Message{}
	m.Init(8)
	m.putInt32(-42)
	m.Rewind()
	v, err := m.getInt32()
	requireNoError(t, err)
	assertEqual(t, int32(-42), v)
}

func TestMessage_putGetUint64(t *testing.T) {
	m := &Message{}
	m.Init(8)
	m.putUint64(5000000000)
	m.Rewind()
	v, err := m.getUint64()
	requireNoError(t, err)
	assertEqual(t, uint64(5000000000), v)
}

func TestMessage_putGetDouble(t *testing.T) {
	m := &Message{}
	m.Init(8)
	m.putDouble(3.1415926535)
	m.Rewind()
	v, err := m.getDouble()
	requireNoError(t, err)
	assertEqual(t, 3.1415926535, v)
}

func TestMessage_putGetString(t *testing.T) {
	cases := []string{"", "hello", "hello world, this is a longer string than eight bytes"}
	for _, s := range cases {
		t.Run(s, func(t *testing.T) {
			m := &Message{}
			m.Init(16)
			err := m.putString(s)
			requireNoError(t, err)
			m.Rewind()
			got, err := m.getString()
			requireNoError(t, err)
			assertEqual(t, s, got)
		})
	}
}

func TestMessage_putGetPassword16_TrimsTrailingNUL(t *testing.T) {
	m := &Message{}
	m.Init(16)
	err := m.putPassword16("secret")
	requireNoError(t, err)
	m.Rewind()
	got, err := m.getPassword16()
	requireNoError(t, err)
	assertEqual(t, "secret", got)
}

func TestMessage_putPassword16_TooLong(t *testing.T) {
	m := &Message{}
	m.Init(16)
	err := m.putPassword16("this password has far more than sixteen bytes")
	if err == nil {
		t.Fatal("expected error for oversized password")
	}
}

// Round-trip: for any valid Message, decode(encode(M)) reproduces M's
// header fields and body.
func TestMessage_EncodeDecodeRoundTrip(t *testing.T) {
	req, err := EncodeDepositRequest(42, FlagAtMostOnce, AmountRequest{
		Name:      "alice",
		AccountNo: 10001,
		Password:  "secret",
		Currency:  CNY,
		Amount:    10.0,
	})
	requireNoError(t, err)

	buf := req.Encode()

	decoded := &Message{}
	err = decoded.Decode(buf)
	requireNoError(t, err)

	mtype, op, flags, status, rid := decoded.Header()
	assertEqual(t, Request, mtype)
	assertEqual(t, OpDeposit, op)
	assertEqual(t, FlagAtMostOnce, flags)
	assertEqual(t, StatusOK, status)
	assertEqual(t, uint64(42), rid)

	body, err := DecodeDepositRequest(decoded)
	requireNoError(t, err)
	assertEqual(t, "alice", body.Name)
	assertEqual(t, int32(10001), body.AccountNo)
	assertEqual(t, "secret", body.Password)
	assertEqual(t, CNY, body.Currency)
	assertEqual(t, 10.0, body.Amount)
}

func TestMessage_Decode_RejectsShortBuffer(t *testing.T) {
	m := &Message{}
	err := m.Decode(make([]byte, 10))
	if err != ErrShortBuffer {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
}

func TestMessage_Decode_RejectsBadMagic(t *testing.T) {
	req, err := EncodeMonitorRegisterRequest(1, 0, MonitorRegisterRequest{Seconds: 5})
	requireNoError(t, err)
	buf := req.Encode()
	buf[0] = 0

	m := &Message{}
	err = m.Decode(buf)
	if err != ErrBadMagic {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

func TestMessage_Decode_RejectsBodyLenMismatch(t *testing.T) {
	req, err := EncodeMonitorRegisterRequest(1, 0, MonitorRegisterRequest{Seconds: 5})
	requireNoError(t, err)
	buf := req.Encode()
	buf = append(buf, 0xFF, 0xFF, 0xFF) // trailing garbage not reflected in bodyLen

	m := &Message{}
	err = m.Decode(buf)
	if err != ErrBodyLenMismatch {
		t.Fatalf("expected ErrBodyLenMismatch, got %v", err)
	}
}

func TestMessage_Reply_EchoesRequestFields(t *testing.T) {
	requestID := uint64(7)
	reply := EncodeDepositReply(requestID, FlagAtMostOnce, BalanceReply{NewBalance: 110})
	buf := reply.Encode()

	decoded := &Message{}
	requireNoError(t, decoded.Decode(buf))

	mtype, op, flags, status, rid := decoded.Header()
	assertEqual(t, Reply, mtype)
	assertEqual(t, OpDeposit, op)
	assertEqual(t, FlagAtMostOnce, flags)
	assertEqual(t, StatusOK, status)
	assertEqual(t, requestID, rid)
}

func TestMessage_FailureReply_HasEmptyBody(t *testing.T) {
	reply := EncodeFailureReply(9, OpWithdraw, 0, StatusInsufficientFunds)
	buf := reply.Encode()
	assertEqual(t, HeaderSize, len(buf))
}

func TestMessage_CallbackUpdate_RoundTrip(t *testing.T) {
	cb, err := EncodeCallbackUpdate(CallbackUpdate{
		UpdateType: OpTransfer,
		AccountNo:  10001,
		Currency:   CNY,
		NewBalance: 75,
		Info:       "transfer out",
	})
	requireNoError(t, err)
	buf := cb.Encode()

	decoded := &Message{}
	requireNoError(t, decoded.Decode(buf))
	mtype, op, flags, status, rid := decoded.Header()
	assertEqual(t, Callback, mtype)
	assertEqual(t, OpCallbackUpdate, op)
	assertEqual(t, uint16(0), flags)
	assertEqual(t, StatusOK, status)
	assertEqual(t, uint64(0), rid)

	body, err := DecodeCallbackUpdate(decoded)
	requireNoError(t, err)
	assertEqual(t, OpTransfer, body.UpdateType)
	assertEqual(t, int32(10001), body.AccountNo)
	assertEqual(t, 75.0, body.NewBalance)
	assertEqual(t, "transfer out", body.Info)
}
