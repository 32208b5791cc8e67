package client

import (
	"net"
	"time"

	"github.com/banklab/udpbank/internal/protocol"
	"github.com/banklab/udpbank/logging"
)

// monitorPollTimeout is the short receive timeout the client uses while
// monitoring, so it can re-check the subscription's expiry between
// datagrams.
const monitorPollTimeout = time.Second

// Update is a decoded CALLBACK_UPDATE, surfaced to the caller of Monitor.
type Update struct {
	UpdateType uint16
	AccountNo  int32
	Currency   uint16
	NewBalance float64
	Info       string
}

// Monitor registers for seconds and then blocks, delivering one Update per
// CALLBACK_UPDATE datagram to onUpdate, until the subscription expires or
// ctx-equivalent cancellation is requested via stop. The
// client performs no other requests on this socket while monitoring, so
// callers should dedicate a Client to this use once Monitor is called.
func (c *Client) Monitor(seconds uint16, onUpdate func(Update), stop <-chan struct{}) error {
	if _, err := c.MonitorRegister(seconds); err != nil {
		return err
	}

	deadline := time.Now().Add(time.Duration(seconds) * time.Second)
	buf := make([]byte, maxDatagramSize)

	for time.Now().Before(deadline) {
		select {
		case <-stop:
			return nil
		default:
		}

		if err := c.conn.SetReadDeadline(time.Now().Add(monitorPollTimeout)); err != nil {
			return err
		}

		n, err := c.conn.Read(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			return err
		}

		m := &protocol.Message{}
		if err := m.Decode(buf[:n]); err != nil {
			continue
		}
		if m.MsgType() != protocol.Callback || m.OpCode() != protocol.OpCallbackUpdate {
			continue
		}

		body, err := protocol.DecodeCallbackUpdate(m)
		if err != nil {
			c.log(logging.Warn, "malformed callback: %v", err)
			continue
		}

		onUpdate(Update{
			UpdateType: body.UpdateType,
			AccountNo:  body.AccountNo,
			Currency:   body.Currency,
			NewBalance: body.NewBalance,
			Info:       body.Info,
		})
	}

	return nil
}
