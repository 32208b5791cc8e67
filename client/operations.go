package client

import "github.com/banklab/udpbank/internal/protocol"

// Open invokes OPEN and returns the new account's number and starting
// balance.
func (c *Client) Open(name, password string, currency uint16, initial float64) (accountNo int32, balance float64, err error) {
	reply, err := c.call(func(requestID uint64, flags uint16) (*protocol.Message, error) {
		return protocol.EncodeOpenRequest(requestID, flags, protocol.OpenRequest{
			Name: name, Password: password, Currency: currency, Initial: initial,
		})
	})
	if err != nil {
		return 0, 0, err
	}
	if reply.Status() != protocol.StatusOK {
		return 0, 0, statusError(reply.Status())
	}
	body, err := protocol.DecodeOpenReply(reply)
	if err != nil {
		return 0, 0, err
	}
	return body.AccountNo, body.Balance, nil
}

// CloseAccount invokes CLOSE and returns the informational message the
// server attached to the reply.
func (c *Client) CloseAccount(name string, accountNo int32, password string) (info string, err error) {
	reply, err := c.call(func(requestID uint64, flags uint16) (*protocol.Message, error) {
		return protocol.EncodeCloseRequest(requestID, flags, protocol.AccountRequest{
			Name: name, AccountNo: accountNo, Password: password,
		})
	})
	if err != nil {
		return "", err
	}
	if reply.Status() != protocol.StatusOK {
		return "", statusError(reply.Status())
	}
	body, err := protocol.DecodeCloseReply(reply)
	if err != nil {
		return "", err
	}
	return body.Info, nil
}

// Deposit invokes DEPOSIT and returns the account's new balance.
func (c *Client) Deposit(name string, accountNo int32, password string, currency uint16, amount float64) (newBalance float64, err error) {
	reply, err := c.call(func(requestID uint64, flags uint16) (*protocol.Message, error) {
		return protocol.EncodeDepositRequest(requestID, flags, protocol.AmountRequest{
			Name: name, AccountNo: accountNo, Password: password, Currency: currency, Amount: amount,
		})
	})
	if err != nil {
		return 0, err
	}
	if reply.Status() != protocol.StatusOK {
		return 0, statusError(reply.Status())
	}
	body, err := protocol.DecodeDepositReply(reply)
	if err != nil {
		return 0, err
	}
	return body.NewBalance, nil
}

// Withdraw invokes WITHDRAW and returns the account's new balance.
func (c *Client) Withdraw(name string, accountNo int32, password string, currency uint16, amount float64) (newBalance float64, err error) {
	reply, err := c.call(func(requestID uint64, flags uint16) (*protocol.Message, error) {
		return protocol.EncodeWithdrawRequest(requestID, flags, protocol.AmountRequest{
			Name: name, AccountNo: accountNo, Password: password, Currency: currency, Amount: amount,
		})
	})
	if err != nil {
		return 0, err
	}
	if reply.Status() != protocol.StatusOK {
		return 0, statusError(reply.Status())
	}
	body, err := protocol.DecodeWithdrawReply(reply)
	if err != nil {
		return 0, err
	}
	return body.NewBalance, nil
}

// QueryBalance invokes QUERY_BALANCE and returns the account's currency and
// current balance.
func (c *Client) QueryBalance(name string, accountNo int32, password string) (currency uint16, balance float64, err error) {
	reply, err := c.call(func(requestID uint64, flags uint16) (*protocol.Message, error) {
		return protocol.EncodeQueryBalanceRequest(requestID, flags, protocol.AccountRequest{
			Name: name, AccountNo: accountNo, Password: password,
		})
	})
	if err != nil {
		return 0, 0, err
	}
	if reply.Status() != protocol.StatusOK {
		return 0, 0, statusError(reply.Status())
	}
	body, err := protocol.DecodeQueryBalanceReply(reply)
	if err != nil {
		return 0, 0, err
	}
	return body.Currency, body.Balance, nil
}

// Transfer invokes TRANSFER and returns both accounts' new balances.
func (c *Client) Transfer(name string, fromAcc int32, password string, toAcc int32, currency uint16, amount float64) (fromNewBalance, toNewBalance float64, err error) {
	reply, err := c.call(func(requestID uint64, flags uint16) (*protocol.Message, error) {
		return protocol.EncodeTransferRequest(requestID, flags, protocol.TransferRequest{
			Name: name, FromAcc: fromAcc, Password: password, ToAcc: toAcc, Currency: currency, Amount: amount,
		})
	})
	if err != nil {
		return 0, 0, err
	}
	if reply.Status() != protocol.StatusOK {
		return 0, 0, statusError(reply.Status())
	}
	body, err := protocol.DecodeTransferReply(reply)
	if err != nil {
		return 0, 0, err
	}
	return body.FromNewBalance, body.ToNewBalance, nil
}

// MonitorRegister invokes MONITOR_REGISTER for seconds and, on success,
// returns the informational message the server attached to the reply. Use
// Monitor (monitor.go) to then receive the callbacks it triggers.
func (c *Client) MonitorRegister(seconds uint16) (info string, err error) {
	reply, err := c.call(func(requestID uint64, flags uint16) (*protocol.Message, error) {
		return protocol.EncodeMonitorRegisterRequest(requestID, flags, protocol.MonitorRegisterRequest{Seconds: seconds})
	})
	if err != nil {
		return "", err
	}
	if reply.Status() != protocol.StatusOK {
		return "", statusError(reply.Status())
	}
	body, err := protocol.DecodeMonitorRegisterReply(reply)
	if err != nil {
		return "", err
	}
	return body.Info, nil
}
