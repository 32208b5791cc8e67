package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortBuffer is returned when a decode is attempted on fewer than
// HeaderSize bytes.
var ErrShortBuffer = errors.New("protocol: buffer shorter than header")

// ErrBadMagic is returned when the leading magic tag does not match.
var ErrBadMagic = errors.New("protocol: bad magic")

// ErrBodyLenMismatch is returned when the header's bodyLen does not match
// the number of bytes actually available after the header.
var ErrBodyLenMismatch = errors.New("protocol: bodyLen does not match buffer")

// Message is the in-memory representation of one datagram: a fixed 24-byte
// header plus an opaque body. It is a reusable buffer, not a value type —
// callers Init it once and reset/Rewind it between uses.
type Message struct {
	magic     uint32
	version   uint8
	msgType   uint8
	opCode    uint16
	flags     uint16
	status    uint16
	requestID uint64

	body struct {
		Bytes  []byte
		Offset int
	}
}

// Init allocates a body buffer of the given initial capacity. Init must be
// called before any put/get method.
func (m *Message) Init(capacity int) {
	if capacity < 8 {
		capacity = 8
	}
	m.body.Bytes = make([]byte, capacity)
	m.body.Offset = 0
}

// reset clears the write/read cursor without discarding the backing array.
func (m *Message) reset() {
	m.body.Offset = 0
}

// Rewind moves the cursor back to the start of the body so a just-encoded
// message can be decoded back out of the same buffer (used by tests and by
// callers that build then immediately parse).
func (m *Message) Rewind() {
	m.body.Offset = 0
}

// Body returns the body bytes written so far and the current offset.
func (m *Message) Body() ([]byte, int) {
	return m.body.Bytes, m.body.Offset
}

func (m *Message) grow(n int) {
	need := m.body.Offset + n
	if need <= len(m.body.Bytes) {
		return
	}
	size := len(m.body.Bytes)
	if size == 0 {
		size = 8
	}
	for size < need {
		size *= 2
	}
	bytes := make([]byte, size)
	copy(bytes, m.body.Bytes[:m.body.Offset])
	m.body.Bytes = bytes
}

func (m *Message) putUint8(v uint8) {
	m.grow(1)
	m.body.Bytes[m.body.Offset] = v
	m.body.Offset++
}

func (m *Message) putUint16(v uint16) {
	m.grow(2)
	binary.BigEndian.PutUint16(m.body.Bytes[m.body.Offset:], v)
	m.body.Offset += 2
}

func (m *Message) putUint32(v uint32) {
	m.grow(4)
	binary.BigEndian.PutUint32(m.body.Bytes[m.body.Offset:], v)
	m.body.Offset += 4
}

func (m *Message) putInt32(v int32) {
	m.putUint32(uint32(v))
}

func (m *Message) putUint64(v uint64) {
	m.grow(8)
	binary.BigEndian.PutUint64(m.body.Bytes[m.body.Offset:], v)
	m.body.Offset += 8
}

func (m *Message) putDouble(v float64) {
	m.putUint64(math.Float64bits(v))
}

func (m *Message) putString(s string) error {
	if len(s) > MaxStringLen {
		return fmt.Errorf("protocol: string too long (%d > %d)", len(s), MaxStringLen)
	}
	m.putUint16(uint16(len(s)))
	m.grow(len(s))
	copy(m.body.Bytes[m.body.Offset:], s)
	m.body.Offset += len(s)
	return nil
}

// putPassword16 encodes s into a fixed 16-byte field, padding with trailing
// zero bytes. It rejects s longer than 16 bytes, which cannot fit the field,
// but accepts an empty s — the 1..16 rule is enforced at the OPEN boundary,
// not by the codec.
func (m *Message) putPassword16(s string) error {
	if len(s) > PasswordSize {
		return fmt.Errorf("protocol: password too long for Password16 (%d > %d)", len(s), PasswordSize)
	}
	m.grow(PasswordSize)
	buf := m.body.Bytes[m.body.Offset : m.body.Offset+PasswordSize]
	for i := range buf {
		buf[i] = 0
	}
	copy(buf, s)
	m.body.Offset += PasswordSize
	return nil
}

func (m *Message) getUint8() (uint8, error) {
	if m.body.Offset+1 > len(m.body.Bytes) {
		return 0, ErrShortBuffer
	}
	v := m.body.Bytes[m.body.Offset]
	m.body.Offset++
	return v, nil
}

func (m *Message) getUint16() (uint16, error) {
	if m.body.Offset+2 > len(m.body.Bytes) {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint16(m.body.Bytes[m.body.Offset:])
	m.body.Offset += 2
	return v, nil
}

func (m *Message) getUint32() (uint32, error) {
	if m.body.Offset+4 > len(m.body.Bytes) {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint32(m.body.Bytes[m.body.Offset:])
	m.body.Offset += 4
	return v, nil
}

func (m *Message) getInt32() (int32, error) {
	v, err := m.getUint32()
	return int32(v), err
}

func (m *Message) getUint64() (uint64, error) {
	if m.body.Offset+8 > len(m.body.Bytes) {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint64(m.body.Bytes[m.body.Offset:])
	m.body.Offset += 8
	return v, nil
}

func (m *Message) getDouble() (float64, error) {
	v, err := m.getUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (m *Message) getString() (string, error) {
	n, err := m.getUint16()
	if err != nil {
		return "", err
	}
	if m.body.Offset+int(n) > len(m.body.Bytes) {
		return "", ErrShortBuffer
	}
	s := string(m.body.Bytes[m.body.Offset : m.body.Offset+int(n)])
	m.body.Offset += int(n)
	return s, nil
}

// getPassword16 reads the fixed 16-byte field and trims trailing zero
// bytes.
func (m *Message) getPassword16() (string, error) {
	if m.body.Offset+PasswordSize > len(m.body.Bytes) {
		return "", ErrShortBuffer
	}
	buf := m.body.Bytes[m.body.Offset : m.body.Offset+PasswordSize]
	m.body.Offset += PasswordSize
	end := len(buf)
	for end > 0 && buf[end-1] == 0 {
		end--
	}
	return string(buf[:end]), nil
}

// putHeader stamps the header fields. It must be called after the body has
// been written (so bodyLen is known).
func (m *Message) putHeader(msgType uint8, opCode, flags uint16, status uint16, requestID uint64) {
	m.magic = Magic
	m.version = Version
	m.msgType = msgType
	m.opCode = opCode
	m.flags = flags
	m.status = status
	m.requestID = requestID
}

// Header exposes the parsed header fields.
func (m *Message) Header() (msgType uint8, opCode, flags, status uint16, requestID uint64) {
	return m.msgType, m.opCode, m.flags, m.status, m.requestID
}

// OpCode returns the message's op code.
func (m *Message) OpCode() uint16 { return m.opCode }

// Flags returns the message's flags.
func (m *Message) Flags() uint16 { return m.flags }

// Status returns the message's status.
func (m *Message) Status() uint16 { return m.status }

// RequestID returns the message's request id.
func (m *Message) RequestID() uint64 { return m.requestID }

// MsgType returns the message's type (Request/Reply/Callback).
func (m *Message) MsgType() uint8 { return m.msgType }

// Encode serializes the header and the body written so far into a single
// datagram ready to hand to a UDP socket.
func (m *Message) Encode() []byte {
	buf := make([]byte, HeaderSize+m.body.Offset)
	binary.BigEndian.PutUint32(buf[0:], Magic)
	buf[4] = m.version
	buf[5] = m.msgType
	binary.BigEndian.PutUint16(buf[6:], m.opCode)
	binary.BigEndian.PutUint16(buf[8:], m.flags)
	binary.BigEndian.PutUint16(buf[10:], m.status)
	binary.BigEndian.PutUint64(buf[12:], m.requestID)
	binary.BigEndian.PutUint32(buf[20:], uint32(m.body.Offset))
	copy(buf[HeaderSize:], m.body.Bytes[:m.body.Offset])
	return buf
}

// Decode parses buf (a full datagram) into m, replacing its previous
// contents. It fails if buf is shorter than the header, the magic does not
// match, or bodyLen does not match the remaining bytes.
func (m *Message) Decode(buf []byte) error {
	if len(buf) < HeaderSize {
		return ErrShortBuffer
	}
	magic := binary.BigEndian.Uint32(buf[0:])
	if magic != Magic {
		return ErrBadMagic
	}
	version := buf[4]
	msgType := buf[5]
	opCode := binary.BigEndian.Uint16(buf[6:])
	flags := binary.BigEndian.Uint16(buf[8:])
	status := binary.BigEndian.Uint16(buf[10:])
	requestID := binary.BigEndian.Uint64(buf[12:])
	bodyLen := binary.BigEndian.Uint32(buf[20:])

	rest := buf[HeaderSize:]
	if int(bodyLen) != len(rest) {
		return ErrBodyLenMismatch
	}

	m.magic = magic
	m.version = version
	m.msgType = msgType
	m.opCode = opCode
	m.flags = flags
	m.status = status
	m.requestID = requestID

	m.body.Bytes = make([]byte, len(rest))
	copy(m.body.Bytes, rest)
	m.body.Offset = 0

	return nil
}

// Version returns the message's wire version (only meaningful after Decode).
func (m *Message) Version() uint8 { return m.version }
