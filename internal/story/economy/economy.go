// Package economy handles currency validation, deduction, and exchange
// for player balances.
package economy

import (
	"strconv"

	"github.com/oleandergames/tradecraft/internal/platform/errors"
	"github.com/oleandergames/tradecraft/internal/story/domain"
)

// exchangeRates maps source currency to destination currency to the
// multiplier applied to the exchanged amount. Diamonds convert only to
// euro and yen, and nothing converts back into diamonds.
var exchangeRates = map[domain.Currency]map[domain.Currency]float64{
	domain.CurrencyDiamond: {
		domain.CurrencyEuro: 1000,
		domain.CurrencyYen:  150000,
	},
	domain.CurrencyEuro: {
		domain.CurrencyYen:    150,
		domain.CurrencyDollar: 1.1,
		domain.CurrencyPound:  0.85,
	},
	domain.CurrencyYen: {
		domain.CurrencyEuro:   0.0067,
		domain.CurrencyDollar: 0.0073,
		domain.CurrencyPound:  0.0057,
	},
	domain.CurrencyDollar: {
		domain.CurrencyEuro:  0.91,
		domain.CurrencyYen:   136.5,
		domain.CurrencyPound: 0.77,
	},
	domain.CurrencyPound: {
		domain.CurrencyEuro:   1.18,
		domain.CurrencyYen:    177,
		domain.CurrencyDollar: 1.3,
	},
}

func insufficient(currency domain.Currency, required, available int) error {
	return errors.WithMetadata(errors.CodeInsufficientFunds,
		"insufficient "+string(currency)+" balance",
		map[string]string{
			"currency":  string(currency),
			"required":  strconv.Itoa(required),
			"available": strconv.Itoa(available),
		})
}

// ValidateCost checks every requirement against the player's balances
// before anything is spent. An empty cost always validates.
func ValidateCost(progress *domain.PlayerProgress, cost map[domain.Currency]int) error {
	for currency, amount := range cost {
		if amount <= 0 {
			continue
		}
		balance := progress.Balance(currency)
		if balance < amount {
			return insufficient(currency, amount, balance)
		}
	}
	return nil
}

// Deduct removes a validated cost from the player's balances. Callers
// must run ValidateCost first; Deduct re-checks to keep balances from
// going negative when they do not.
func Deduct(progress *domain.PlayerProgress, cost map[domain.Currency]int) error {
	if err := ValidateCost(progress, cost); err != nil {
		return err
	}
	for currency, amount := range cost {
		if amount <= 0 {
			continue
		}
		progress.Balances[currency] -= amount
	}
	return nil
}

// Credit adds a reward to the player's balances.
func Credit(progress *domain.PlayerProgress, currency domain.Currency, amount int) {
	if amount <= 0 || !currency.Known() {
		return
	}
	if progress.Balances == nil {
		progress.Balances = make(map[domain.Currency]int)
	}
	progress.Balances[currency] += amount
}

// Exchange converts an amount between two currencies at the fixed rate
// table. The converted amount is truncated toward zero.
func Exchange(progress *domain.PlayerProgress, from, to domain.Currency, amount int) (int, error) {
	if amount <= 0 {
		return 0, errors.WithMetadata(errors.CodeInvalidExchange,
			"exchange amount must be positive",
			map[string]string{"from": string(from), "to": string(to)})
	}
	rate, ok := exchangeRates[from][to]
	if !ok {
		return 0, errors.WithMetadata(errors.CodeInvalidExchange,
			"no exchange rate from "+string(from)+" to "+string(to),
			map[string]string{"from": string(from), "to": string(to)})
	}

	balance := progress.Balance(from)
	if balance < amount {
		return 0, insufficient(from, amount, balance)
	}

	converted := int(float64(amount) * rate)
	progress.Balances[from] = balance - amount
	progress.Balances[to] += converted
	return converted, nil
}
