package bank

import "sync"

// firstAccountNo is the first account number ever assigned.
const firstAccountNo = int32(10001)

// InMemoryBank is the reference Bank implementation: accounts live only in
// a process-local map, guarded by a mutex. The server itself never runs
// two operations concurrently, but guarding the store lets it also be
// driven directly and concurrently from tests and from the harness's
// simulated clients.
type InMemoryBank struct {
	mu       sync.Mutex
	accounts map[int32]*Account
	nextNo   int32
}

// NewInMemoryBank creates an empty bank with no accounts.
func NewInMemoryBank() *InMemoryBank {
	return &InMemoryBank{
		accounts: make(map[int32]*Account),
		nextNo:   firstAccountNo,
	}
}

// Seed pre-populates the bank with accounts, e.g. loaded from a startup
// YAML file (internal/bank/seed.go). Account numbers below firstAccountNo
// are accepted as-is; nextNo is advanced past the highest seeded number so
// freshly opened accounts never collide with seeded ones.
func (b *InMemoryBank) Seed(accounts []Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range accounts {
		a := accounts[i]
		b.accounts[a.AccountNo] = &a
		if a.AccountNo >= b.nextNo {
			b.nextNo = a.AccountNo + 1
		}
	}
}

func (b *InMemoryBank) lookup(accountNo int32) (*Account, error) {
	acc, ok := b.accounts[accountNo]
	if !ok || acc.Closed {
		return nil, errNotFound
	}
	return acc, nil
}

func authenticate(acc *Account, name, password string) error {
	if acc.Name != name || acc.Password != password {
		return errAuth
	}
	return nil
}

// Open implements Bank.
func (b *InMemoryBank) Open(name, password string, currency uint16, initial float64) (int32, float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(password) < 1 || len(password) > 16 {
		return 0, 0, errPasswordFormat
	}
	if initial < 0 {
		return 0, 0, errBadRequest
	}

	accountNo := b.nextNo
	b.nextNo++

	b.accounts[accountNo] = &Account{
		AccountNo: accountNo,
		Name:      name,
		Password:  password,
		Currency:  currency,
		Balance:   initial,
	}

	return accountNo, initial, nil
}

// Close implements Bank.
func (b *InMemoryBank) Close(name string, accountNo int32, password string) (float64, uint16, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, err := b.lookup(accountNo)
	if err != nil {
		return 0, 0, err
	}
	if err := authenticate(acc, name, password); err != nil {
		return 0, 0, err
	}

	acc.Closed = true
	// Balance is read after marking closed; closing never changes it, so
	// the order is observationally a no-op but kept for clarity.
	return acc.Balance, acc.Currency, nil
}

// Deposit implements Bank.
func (b *InMemoryBank) Deposit(name string, accountNo int32, password string, currency uint16, amount float64) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, err := b.lookup(accountNo)
	if err != nil {
		return 0, err
	}
	if err := authenticate(acc, name, password); err != nil {
		return 0, err
	}
	if currency != acc.Currency {
		return 0, errCurrency
	}
	if amount <= 0 {
		return 0, errBadRequest
	}

	acc.Balance += amount
	return acc.Balance, nil
}

// Withdraw implements Bank.
func (b *InMemoryBank) Withdraw(name string, accountNo int32, password string, currency uint16, amount float64) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, err := b.lookup(accountNo)
	if err != nil {
		return 0, err
	}
	if err := authenticate(acc, name, password); err != nil {
		return 0, err
	}
	if currency != acc.Currency {
		return 0, errCurrency
	}
	if amount <= 0 {
		return 0, errBadRequest
	}
	if amount > acc.Balance {
		return 0, errInsufficientFunds
	}

	acc.Balance -= amount
	return acc.Balance, nil
}

// QueryBalance implements Bank.
func (b *InMemoryBank) QueryBalance(name string, accountNo int32, password string) (uint16, float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, err := b.lookup(accountNo)
	if err != nil {
		return 0, 0, err
	}
	if err := authenticate(acc, name, password); err != nil {
		return 0, 0, err
	}

	return acc.Currency, acc.Balance, nil
}

// Transfer implements Bank. Either both balances update or neither does.
func (b *InMemoryBank) Transfer(name string, fromAcc int32, password string, toAcc int32, currency uint16, amount float64) (float64, float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	from, err := b.lookup(fromAcc)
	if err != nil {
		return 0, 0, err
	}
	to, err := b.lookup(toAcc)
	if err != nil {
		return 0, 0, err
	}
	if err := authenticate(from, name, password); err != nil {
		return 0, 0, err
	}
	if currency != from.Currency || currency != to.Currency {
		return 0, 0, errCurrency
	}
	if fromAcc == toAcc {
		return 0, 0, errBadRequest
	}
	if amount <= 0 {
		return 0, 0, errBadRequest
	}
	if amount > from.Balance {
		return 0, 0, errInsufficientFunds
	}

	from.Balance -= amount
	to.Balance += amount

	return from.Balance, to.Balance, nil
}
