package client

import (
	"fmt"

	"github.com/banklab/udpbank/internal/protocol"
)

// ErrCommunication is returned when every attempt ends without a matching
// reply, whether it timed out or failed to send or receive.
var ErrCommunication = fmt.Errorf("no reply received after retries")

// StatusError wraps a non-OK Reply status so the caller can branch on it
// without importing internal/protocol.
type StatusError struct {
	Status uint16
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bank: %s", protocol.StatusName(e.Status))
}

func statusError(status uint16) error {
	if status == protocol.StatusOK {
		return nil
	}
	return &StatusError{Status: status}
}
