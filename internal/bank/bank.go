// Package bank implements the account store consumed by the server. It is
// the system's one external collaborator: the server never
// touches account state directly, only through this contract.
package bank

import "github.com/banklab/udpbank/internal/protocol"

// Error is a typed operation failure, carrying the wire status code that
// should be put on the Reply.
type Error struct {
	Status  uint16
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(status uint16, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Failure priority order: existence, then auth, then
// currency, then argument sanity, then funds. Each error below reports
// exactly one of these checks; InMemoryBank (memory.go) applies them in order.

var (
	errNotFound          = newError(protocol.StatusNotFound, "account not found")
	errAuth              = newError(protocol.StatusAuth, "name or password does not match")
	errCurrency          = newError(protocol.StatusCurrency, "currency mismatch")
	errBadRequest        = newError(protocol.StatusBadRequest, "bad request")
	errPasswordFormat    = newError(protocol.StatusPasswordFormat, "password must be 1..16 bytes")
	errInsufficientFunds = newError(protocol.StatusInsufficientFunds, "insufficient funds")
)

// Account is one bank account.
type Account struct {
	AccountNo int32
	Name      string
	Password  string
	Currency  uint16
	Balance   float64
	Closed    bool
}

// Bank is the operation contract the server dispatches onto. Implementations
// need not be safe for concurrent use beyond "one operation at a time per
// server" — the server loop that calls it is single-threaded.
type Bank interface {
	// Open creates a new account and returns its assigned account number
	// and starting balance.
	Open(name, password string, currency uint16, initial float64) (accountNo int32, balance float64, err error)

	// Close marks an account closed and returns its balance and currency
	// at the moment of closing, for the callback body. Balance is read
	// after marking closed, which is equivalent since closing an account
	// never changes its balance.
	Close(name string, accountNo int32, password string) (balance float64, currency uint16, err error)

	// Deposit credits amount to the account and returns the new balance.
	Deposit(name string, accountNo int32, password string, currency uint16, amount float64) (newBalance float64, err error)

	// Withdraw debits amount from the account and returns the new balance.
	Withdraw(name string, accountNo int32, password string, currency uint16, amount float64) (newBalance float64, err error)

	// QueryBalance returns the account's currency and balance.
	QueryBalance(name string, accountNo int32, password string) (currency uint16, balance float64, err error)

	// Transfer atomically moves amount from one account to another and
	// returns both new balances.
	Transfer(name string, fromAcc int32, password string, toAcc int32, currency uint16, amount float64) (fromNewBalance, toNewBalance float64, err error)
}
