package payment

import "time"

// CustomerAccount is the provider-side customer a credit card belongs to.
type CustomerAccount struct {
	ExternalID string
}

// CreditCard is the payment instrument as resolved from the partner-data
// service. Fields are nullable where the upstream payload allows absence;
// validation happens at the service boundary, not here.
type CreditCard struct {
	ID              string
	ExternalID      string
	CustomerAccount *CustomerAccount
	DeactivatedAt   *time.Time
}

// MerchantAccount is a partner's configured destination for payment holds.
type MerchantAccount struct {
	ExternalID   string
	CurrencyCode string
}
