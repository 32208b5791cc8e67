package bank

import (
	"testing"

	"github.com/banklab/udpbank/internal/protocol"
)

func assertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

func statusOf(t *testing.T, err error) uint16 {
	t.Helper()
	if err == nil {
		return protocol.StatusOK
	}
	be, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *bank.Error, got %T: %v", err, err)
	}
	return be.Status
}

func openAccount(t *testing.T, b *InMemoryBank, name, password string, currency uint16, initial float64) int32 {
	t.Helper()
	accNo, _, err := b.Open(name, password, currency, initial)
	if err != nil {
		t.Fatal(err)
	}
	return accNo
}

func TestOpen_AssignsMonotonicAccountNumbers(t *testing.T) {
	b := NewInMemoryBank()
	a := openAccount(t, b, "alice", "secret", protocol.CNY, 100)
	c := openAccount(t, b, "carol", "secret", protocol.CNY, 0)
	assertEqual(t, int32(10001), a)
	assertEqual(t, int32(10002), c)
}

func TestOpen_RejectsBadPasswordLength(t *testing.T) {
	b := NewInMemoryBank()
	_, _, err := b.Open("alice", "", protocol.CNY, 100)
	assertEqual(t, protocol.StatusPasswordFormat, statusOf(t, err))

	long := make([]byte, 17)
	_, _, err = b.Open("alice", string(long), protocol.CNY, 100)
	assertEqual(t, protocol.StatusPasswordFormat, statusOf(t, err))
}

func TestOpen_RejectsNegativeInitialBalance(t *testing.T) {
	b := NewInMemoryBank()
	_, _, err := b.Open("alice", "secret", protocol.CNY, -1)
	assertEqual(t, protocol.StatusBadRequest, statusOf(t, err))
}

// Existence is checked before authentication, even when name/password would
// also be wrong.
func TestExistenceCheckedBeforeAuth(t *testing.T) {
	b := NewInMemoryBank()
	_, _, err := b.QueryBalance("nobody", 99999, "wrong")
	assertEqual(t, protocol.StatusNotFound, statusOf(t, err))
}

func TestClosedAccountTreatedAsNotFound(t *testing.T) {
	b := NewInMemoryBank()
	accNo := openAccount(t, b, "alice", "secret", protocol.CNY, 100)
	if _, _, err := b.Close("alice", accNo, "secret"); err != nil {
		t.Fatal(err)
	}
	_, _, err := b.QueryBalance("alice", accNo, "secret")
	assertEqual(t, protocol.StatusNotFound, statusOf(t, err))
}

func TestDeposit_AuthMismatch(t *testing.T) {
	b := NewInMemoryBank()
	accNo := openAccount(t, b, "alice", "secret", protocol.CNY, 100)
	_, err := b.Deposit("alice", accNo, "wrongpw", protocol.CNY, 10)
	assertEqual(t, protocol.StatusAuth, statusOf(t, err))
}

func TestDeposit_CurrencyMismatch(t *testing.T) {
	b := NewInMemoryBank()
	accNo := openAccount(t, b, "alice", "secret", protocol.CNY, 100)
	_, err := b.Deposit("alice", accNo, "secret", protocol.SGD, 10)
	assertEqual(t, protocol.StatusCurrency, statusOf(t, err))
}

func TestDeposit_NonPositiveAmount(t *testing.T) {
	b := NewInMemoryBank()
	accNo := openAccount(t, b, "alice", "secret", protocol.CNY, 100)
	_, err := b.Deposit("alice", accNo, "secret", protocol.CNY, 0)
	assertEqual(t, protocol.StatusBadRequest, statusOf(t, err))
}

// WITHDRAW more than the balance leaves the balance
// unchanged and returns ERR_INSUFFICIENT_FUNDS.
func TestWithdraw_InsufficientFunds_BalanceUnchanged(t *testing.T) {
	b := NewInMemoryBank()
	accNo := openAccount(t, b, "alice", "secret", protocol.CNY, 100)

	_, err := b.Withdraw("alice", accNo, "secret", protocol.CNY, 150)
	assertEqual(t, protocol.StatusInsufficientFunds, statusOf(t, err))

	_, balance, err := b.QueryBalance("alice", accNo, "secret")
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, 100.0, balance)
}

func TestTransfer_SameAccount(t *testing.T) {
	b := NewInMemoryBank()
	accNo := openAccount(t, b, "alice", "secret", protocol.CNY, 100)
	_, _, err := b.Transfer("alice", accNo, "secret", accNo, protocol.CNY, 10)
	assertEqual(t, protocol.StatusBadRequest, statusOf(t, err))
}

// Transfer atomicity — on success the sum of balances in the
// affected currency is preserved; on failure neither balance moves.
func TestTransfer_Atomicity(t *testing.T) {
	b := NewInMemoryBank()
	from := openAccount(t, b, "alice", "secret", protocol.CNY, 100)
	to := openAccount(t, b, "bob", "hunter2", protocol.CNY, 50)

	fromBal, toBal, err := b.Transfer("alice", from, "secret", to, protocol.CNY, 25)
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, 75.0, fromBal)
	assertEqual(t, 75.0, toBal)

	_, err = b.Deposit("alice", from, "secret", protocol.CNY, 1000) // unrelated control op
	if err != nil {
		t.Fatal(err)
	}

	_, fromAfter, _ := b.QueryBalance("alice", from, "secret")
	_, toAfter, _ := b.QueryBalance("bob", to, "hunter2")
	assertEqual(t, 1075.0, fromAfter)
	assertEqual(t, 75.0, toAfter)
}

func TestTransfer_InsufficientFunds_NeitherBalanceMoves(t *testing.T) {
	b := NewInMemoryBank()
	from := openAccount(t, b, "alice", "secret", protocol.CNY, 10)
	to := openAccount(t, b, "bob", "hunter2", protocol.CNY, 50)

	_, _, err := b.Transfer("alice", from, "secret", to, protocol.CNY, 1000)
	assertEqual(t, protocol.StatusInsufficientFunds, statusOf(t, err))

	_, fromBal, _ := b.QueryBalance("alice", from, "secret")
	_, toBal, _ := b.QueryBalance("bob", to, "hunter2")
	assertEqual(t, 10.0, fromBal)
	assertEqual(t, 50.0, toBal)
}
