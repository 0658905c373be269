package partner

import "github.com/arteon/exchange/internal/domain/payment"

// Partner is the commission and payout configuration fetched from the
// partner-data service. EffectiveCommissionRate is nil when the partner has
// no commission configured; callers must treat that as an error, never as
// zero commission.
type Partner struct {
	ID                      string
	EffectiveCommissionRate *float64
	MerchantAccounts        []payment.MerchantAccount
}

// MerchantAccountFor picks the destination account for a currency: the
// first account matching the currency when accounts are currency-scoped,
// otherwise the first configured account.
func (p *Partner) MerchantAccountFor(currencyCode string) *payment.MerchantAccount {
	if p == nil || len(p.MerchantAccounts) == 0 {
		return nil
	}
	for i := range p.MerchantAccounts {
		if p.MerchantAccounts[i].CurrencyCode != "" && p.MerchantAccounts[i].CurrencyCode == currencyCode {
			account := p.MerchantAccounts[i]
			return &account
		}
	}
	account := p.MerchantAccounts[0]
	return &account
}
