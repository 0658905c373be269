package order

import (
	domorder "github.com/arteon/exchange/internal/domain/order"
	dompayment "github.com/arteon/exchange/internal/domain/payment"
)

// ValidateCreditCard gates submission on the card's shape and activation
// state. It returns nil when the card is usable; each failure is an
// OrderError whose data names the failed check.
func ValidateCreditCard(card *dompayment.CreditCard) error {
	if card == nil || card.ExternalID == "" {
		return invalidCard("missing_external_id")
	}
	if card.CustomerAccount == nil || card.CustomerAccount.ExternalID == "" {
		return invalidCard("missing_customer_account")
	}
	if card.DeactivatedAt != nil {
		return invalidCard("deactivated")
	}
	return nil
}

func invalidCard(reason string) error {
	return domorder.NewOrderErrorData(domorder.CodeInvalidCreditCard, map[string]any{"reason": reason}, nil)
}
