package server

import (
	"time"

	"github.com/banklab/udpbank/internal/bank"
	"github.com/banklab/udpbank/internal/protocol"
)

// callbackEvent captures enough of a successful mutating operation to build
// the Callback datagrams the server fans out after a mutation.
type callbackEvent struct {
	UpdateType uint16
	AccountNo  int32
	Currency   uint16
	NewBalance float64
	Info       string
}

// dispatch routes a decoded Request to the Bank and builds the Reply
// message, echoing opCode/flags/requestID from the request.
// It returns any callback events the operation's success should fan out.
func (s *Server) dispatch(req *protocol.Message, clientEndpoint string, now time.Time) (*protocol.Message, []callbackEvent) {
	_, opCode, flags, _, requestID := req.Header()

	switch opCode {
	case protocol.OpOpen:
		return s.dispatchOpen(req, flags, requestID)
	case protocol.OpClose:
		return s.dispatchClose(req, flags, requestID)
	case protocol.OpDeposit:
		return s.dispatchDeposit(req, flags, requestID)
	case protocol.OpWithdraw:
		return s.dispatchWithdraw(req, flags, requestID)
	case protocol.OpQueryBalance:
		return s.dispatchQueryBalance(req, flags, requestID)
	case protocol.OpTransfer:
		return s.dispatchTransfer(req, flags, requestID)
	case protocol.OpMonitorRegister:
		return s.dispatchMonitorRegister(req, flags, requestID, clientEndpoint, now)
	default:
		return protocol.EncodeFailureReply(requestID, opCode, flags, protocol.StatusBadRequest), nil
	}
}

func bankStatus(err error) uint16 {
	if be, ok := err.(*bank.Error); ok {
		return be.Status
	}
	return protocol.StatusBadRequest
}

func (s *Server) dispatchOpen(req *protocol.Message, flags uint16, requestID uint64) (*protocol.Message, []callbackEvent) {
	body, err := protocol.DecodeOpenRequest(req)
	if err != nil {
		return protocol.EncodeFailureReply(requestID, protocol.OpOpen, flags, protocol.StatusBadRequest), nil
	}

	accountNo, balance, err := s.bank.Open(body.Name, body.Password, body.Currency, body.Initial)
	if err != nil {
		return protocol.EncodeFailureReply(requestID, protocol.OpOpen, flags, bankStatus(err)), nil
	}

	reply := protocol.EncodeOpenReply(requestID, flags, protocol.OpenReply{AccountNo: accountNo, Balance: balance})
	events := []callbackEvent{{
		UpdateType: protocol.OpOpen,
		AccountNo:  accountNo,
		Currency:   body.Currency,
		NewBalance: balance,
		Info:       "account opened",
	}}
	return reply, events
}

func (s *Server) dispatchClose(req *protocol.Message, flags uint16, requestID uint64) (*protocol.Message, []callbackEvent) {
	body, err := protocol.DecodeCloseRequest(req)
	if err != nil {
		return protocol.EncodeFailureReply(requestID, protocol.OpClose, flags, protocol.StatusBadRequest), nil
	}

	balance, currency, err := s.bank.Close(body.Name, body.AccountNo, body.Password)
	if err != nil {
		return protocol.EncodeFailureReply(requestID, protocol.OpClose, flags, bankStatus(err)), nil
	}

	reply, err := protocol.EncodeCloseReply(requestID, flags, protocol.InfoReply{Info: "account closed"})
	if err != nil {
		return protocol.EncodeFailureReply(requestID, protocol.OpClose, flags, protocol.StatusBadRequest), nil
	}

	events := []callbackEvent{{
		UpdateType: protocol.OpClose,
		AccountNo:  body.AccountNo,
		Currency:   currency,
		NewBalance: balance,
		Info:       "account closed",
	}}
	return reply, events
}

func (s *Server) dispatchDeposit(req *protocol.Message, flags uint16, requestID uint64) (*protocol.Message, []callbackEvent) {
	body, err := protocol.DecodeDepositRequest(req)
	if err != nil {
		return protocol.EncodeFailureReply(requestID, protocol.OpDeposit, flags, protocol.StatusBadRequest), nil
	}

	newBalance, err := s.bank.Deposit(body.Name, body.AccountNo, body.Password, body.Currency, body.Amount)
	if err != nil {
		return protocol.EncodeFailureReply(requestID, protocol.OpDeposit, flags, bankStatus(err)), nil
	}

	reply := protocol.EncodeDepositReply(requestID, flags, protocol.BalanceReply{NewBalance: newBalance})
	events := []callbackEvent{{
		UpdateType: protocol.OpDeposit,
		AccountNo:  body.AccountNo,
		Currency:   body.Currency,
		NewBalance: newBalance,
		Info:       "deposit",
	}}
	return reply, events
}

func (s *Server) dispatchWithdraw(req *protocol.Message, flags uint16, requestID uint64) (*protocol.Message, []callbackEvent) {
	body, err := protocol.DecodeWithdrawRequest(req)
	if err != nil {
		return protocol.EncodeFailureReply(requestID, protocol.OpWithdraw, flags, protocol.StatusBadRequest), nil
	}

	newBalance, err := s.bank.Withdraw(body.Name, body.AccountNo, body.Password, body.Currency, body.Amount)
	if err != nil {
		return protocol.EncodeFailureReply(requestID, protocol.OpWithdraw, flags, bankStatus(err)), nil
	}

	reply := protocol.EncodeWithdrawReply(requestID, flags, protocol.BalanceReply{NewBalance: newBalance})
	events := []callbackEvent{{
		UpdateType: protocol.OpWithdraw,
		AccountNo:  body.AccountNo,
		Currency:   body.Currency,
		NewBalance: newBalance,
		Info:       "withdrawal",
	}}
	return reply, events
}

func (s *Server) dispatchQueryBalance(req *protocol.Message, flags uint16, requestID uint64) (*protocol.Message, []callbackEvent) {
	body, err := protocol.DecodeQueryBalanceRequest(req)
	if err != nil {
		return protocol.EncodeFailureReply(requestID, protocol.OpQueryBalance, flags, protocol.StatusBadRequest), nil
	}

	currency, balance, err := s.bank.QueryBalance(body.Name, body.AccountNo, body.Password)
	if err != nil {
		return protocol.EncodeFailureReply(requestID, protocol.OpQueryBalance, flags, bankStatus(err)), nil
	}

	reply := protocol.EncodeQueryBalanceReply(requestID, flags, protocol.QueryBalanceReply{Currency: currency, Balance: balance})
	return reply, nil // query is not mutating, no callback
}

func (s *Server) dispatchTransfer(req *protocol.Message, flags uint16, requestID uint64) (*protocol.Message, []callbackEvent) {
	body, err := protocol.DecodeTransferRequest(req)
	if err != nil {
		return protocol.EncodeFailureReply(requestID, protocol.OpTransfer, flags, protocol.StatusBadRequest), nil
	}

	fromBal, toBal, err := s.bank.Transfer(body.Name, body.FromAcc, body.Password, body.ToAcc, body.Currency, body.Amount)
	if err != nil {
		return protocol.EncodeFailureReply(requestID, protocol.OpTransfer, flags, bankStatus(err)), nil
	}

	reply := protocol.EncodeTransferReply(requestID, flags, protocol.TransferReply{FromNewBalance: fromBal, ToNewBalance: toBal})
	// Two callbacks per monitor, one per affected account, in (fromAcc,
	// toAcc) order.
	events := []callbackEvent{
		{UpdateType: protocol.OpTransfer, AccountNo: body.FromAcc, Currency: body.Currency, NewBalance: fromBal, Info: "transfer out"},
		{UpdateType: protocol.OpTransfer, AccountNo: body.ToAcc, Currency: body.Currency, NewBalance: toBal, Info: "transfer in"},
	}
	return reply, events
}

func (s *Server) dispatchMonitorRegister(req *protocol.Message, flags uint16, requestID uint64, clientEndpoint string, now time.Time) (*protocol.Message, []callbackEvent) {
	body, err := protocol.DecodeMonitorRegisterRequest(req)
	if err != nil {
		return protocol.EncodeFailureReply(requestID, protocol.OpMonitorRegister, flags, protocol.StatusBadRequest), nil
	}
	if body.Seconds == 0 {
		return protocol.EncodeFailureReply(requestID, protocol.OpMonitorRegister, flags, protocol.StatusBadRequest), nil
	}

	expiresAt := now.Add(time.Duration(body.Seconds) * time.Second)
	s.monitors.Register(clientEndpoint, expiresAt.UnixNano())

	reply, err := protocol.EncodeMonitorRegisterReply(requestID, flags, protocol.InfoReply{Info: "monitoring"})
	if err != nil {
		return protocol.EncodeFailureReply(requestID, protocol.OpMonitorRegister, flags, protocol.StatusBadRequest), nil
	}
	return reply, nil
}
