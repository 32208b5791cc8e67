package bank

import (
	"os"

	"github.com/goccy/go-yaml"
)

// SeedAccount is the YAML shape of one entry in a --seedFile file, matching the
// teacher's use of github.com/goccy/go-yaml for its NodeInfo list
// (client/store.go's YamlNodeStore) but repurposed for accounts. Unlike the
// teacher's store, this is never written back — it is a load-once startup
// convenience for demos and the harness, not persistence.
type SeedAccount struct {
	AccountNo int32   `yaml:"accountNo"`
	Name      string  `yaml:"name"`
	Password  string  `yaml:"password"`
	Currency  uint16  `yaml:"currency"`
	Balance   float64 `yaml:"balance"`
}

// LoadSeed reads a YAML list of SeedAccount from path and converts it to
// Account values ready to hand to InMemoryBank.Seed.
func LoadSeed(path string) ([]Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var seeds []SeedAccount
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return nil, err
	}

	accounts := make([]Account, len(seeds))
	for i, s := range seeds {
		accounts[i] = Account{
			AccountNo: s.AccountNo,
			Name:      s.Name,
			Password:  s.Password,
			Currency:  s.Currency,
			Balance:   s.Balance,
		}
	}

	return accounts, nil
}
