package domain

// Currency identifies one of the game's currencies by its display symbol.
type Currency string

const (
	// CurrencyDiamond is the premium currency.
	CurrencyDiamond Currency = "💎"
	// CurrencyDollar is the standard currency.
	CurrencyDollar Currency = "💵"
	// CurrencyPound is the British currency.
	CurrencyPound Currency = "💷"
	// CurrencyEuro is the European currency.
	CurrencyEuro Currency = "💶"
	// CurrencyYen is the Japanese currency.
	CurrencyYen Currency = "💴"
)

// Currencies lists every known currency.
var Currencies = []Currency{
	CurrencyDiamond,
	CurrencyDollar,
	CurrencyPound,
	CurrencyEuro,
	CurrencyYen,
}

// DefaultBalances returns the starting balances for a new player.
func DefaultBalances() map[Currency]int {
	return map[Currency]int{
		CurrencyDiamond: 500,
		CurrencyDollar:  5000,
		CurrencyPound:   5000,
		CurrencyEuro:    5000,
		CurrencyYen:     5000,
	}
}

// Known reports whether the currency is one of the game's currencies.
func (c Currency) Known() bool {
	for _, known := range Currencies {
		if c == known {
			return true
		}
	}
	return false
}
