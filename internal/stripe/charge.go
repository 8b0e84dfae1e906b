package stripe

import (
	"encoding/json"
	"strings"
)

// Charge mirrors the provider's charge object, restricted to the fields the
// platform consumes. String fields arrive with occasional stray whitespace
// from the provider and are trimmed on decode.
type Charge struct {
	ID                   string
	Object               string
	Amount               int64
	AmountCaptured       *int64
	AmountRefunded       *int64
	Currency             Currency
	Status               string
	Created              int64
	PaymentIntent        *string
	Captured             *bool
	ReceiptURL           *string
	Customer             *string
	Description          *string
	PaymentMethod        *string
	PaymentMethodDetails *PaymentMethodDetails
	Metadata             map[string]string
}

// CardDetails is the card sub-record of a charge's payment method details.
type CardDetails struct {
	Brand       string
	Country     string
	Funding     string
	Last4       string
	ExpMonth    int64
	ExpYear     int64
	Fingerprint string
	Network     string
	CVCCheck    *string
	ReceiptURL  *string
	Mandate     *string
}

type PaymentMethodDetails struct {
	Card CardDetails
}

// ChargeEventData is the data payload of charge.refunded and refund.updated
// events. PreviousAttributes is kept opaque: the provider sends a partial
// charge there.
type ChargeEventData struct {
	Object             Charge
	PreviousAttributes map[string]any
}

func decodeChargeEventData(raw json.RawMessage) (*ChargeEventData, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return nil, fieldErr("data", "must be an object")
	}

	objRaw, ok := o["object"]
	if !ok || isNull(objRaw) {
		return nil, fieldErr("data.object", "is required")
	}

	charge, err := decodeCharge(objRaw)
	if err != nil {
		return nil, err
	}

	prev, err := o.optionalAnyMap("previous_attributes")
	if err != nil {
		return nil, err
	}

	return &ChargeEventData{Object: *charge, PreviousAttributes: prev}, nil
}

func decodeCharge(raw json.RawMessage) (*Charge, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return nil, fieldErr("data.object", "must be an object")
	}

	var c Charge

	if c.ID, err = o.requiredString("id"); err != nil {
		return nil, err
	}
	if c.Object, err = o.requiredString("object"); err != nil {
		return nil, err
	}
	if c.Amount, err = o.minorUnits("amount"); err != nil {
		return nil, err
	}
	if c.AmountCaptured, err = o.optionalMinorUnits("amount_captured"); err != nil {
		return nil, err
	}
	if c.AmountRefunded, err = o.optionalMinorUnits("amount_refunded"); err != nil {
		return nil, err
	}
	if c.Currency, err = o.currency("currency"); err != nil {
		return nil, err
	}
	if c.Status, err = o.requiredString("status"); err != nil {
		return nil, err
	}
	if c.Created, err = o.requiredInt("created"); err != nil {
		return nil, err
	}
	if c.PaymentIntent, err = o.optionalString("payment_intent"); err != nil {
		return nil, err
	}
	if c.Captured, err = o.optionalBool("captured"); err != nil {
		return nil, err
	}
	if c.ReceiptURL, err = o.optionalString("receipt_url"); err != nil {
		return nil, err
	}
	if c.Customer, err = o.optionalString("customer"); err != nil {
		return nil, err
	}
	if c.Description, err = o.optionalString("description"); err != nil {
		return nil, err
	}
	if c.PaymentMethod, err = o.optionalString("payment_method"); err != nil {
		return nil, err
	}
	if c.Metadata, err = o.optionalStringMap("metadata"); err != nil {
		return nil, err
	}

	if detailsRaw, ok := o["payment_method_details"]; ok && !isNull(detailsRaw) {
		details, err := decodePaymentMethodDetails(detailsRaw)
		if err != nil {
			return nil, err
		}
		c.PaymentMethodDetails = details
	}

	c.ID = strings.TrimSpace(c.ID)
	c.Object = strings.TrimSpace(c.Object)
	c.Status = strings.TrimSpace(c.Status)
	c.PaymentIntent = trimPtr(c.PaymentIntent)
	c.ReceiptURL = trimPtr(c.ReceiptURL)
	c.Customer = trimPtr(c.Customer)
	c.Description = trimPtr(c.Description)
	c.PaymentMethod = trimPtr(c.PaymentMethod)

	return &c, nil
}

func decodePaymentMethodDetails(raw json.RawMessage) (*PaymentMethodDetails, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return nil, fieldErr("payment_method_details", "must be an object")
	}

	cardRaw, ok := o["card"]
	if !ok || isNull(cardRaw) {
		return nil, fieldErr("payment_method_details.card", "is required")
	}

	card, err := decodeObject(cardRaw)
	if err != nil {
		return nil, fieldErr("payment_method_details.card", "must be an object")
	}

	var d CardDetails

	if d.Brand, err = card.requiredString("brand"); err != nil {
		return nil, err
	}
	if d.Country, err = card.requiredString("country"); err != nil {
		return nil, err
	}
	if d.Funding, err = card.requiredString("funding"); err != nil {
		return nil, err
	}
	if d.Last4, err = card.requiredString("last4"); err != nil {
		return nil, err
	}
	if d.ExpMonth, err = card.requiredInt("exp_month"); err != nil {
		return nil, err
	}
	if d.ExpYear, err = card.requiredInt("exp_year"); err != nil {
		return nil, err
	}
	if d.Fingerprint, err = card.requiredString("fingerprint"); err != nil {
		return nil, err
	}
	if d.Network, err = card.requiredString("network"); err != nil {
		return nil, err
	}
	if d.CVCCheck, err = card.optionalString("cvc_check"); err != nil {
		return nil, err
	}
	if d.ReceiptURL, err = card.optionalString("receipt_url"); err != nil {
		return nil, err
	}
	if d.Mandate, err = card.optionalString("mandate"); err != nil {
		return nil, err
	}

	d.Brand = strings.TrimSpace(d.Brand)
	d.Country = strings.TrimSpace(d.Country)
	d.Funding = strings.TrimSpace(d.Funding)
	d.Last4 = strings.TrimSpace(d.Last4)
	d.Fingerprint = strings.TrimSpace(d.Fingerprint)
	d.Network = strings.TrimSpace(d.Network)
	d.CVCCheck = trimPtr(d.CVCCheck)
	d.Mandate = trimPtr(d.Mandate)

	return &PaymentMethodDetails{Card: d}, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}
