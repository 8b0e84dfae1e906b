package stripe

import "encoding/json"

// CheckoutSession mirrors the provider's checkout session object.
type CheckoutSession struct {
	ID                        string
	Object                    string
	AmountSubtotal            int64
	AmountTotal               int64
	CancelURL                 string
	SuccessURL                string
	ClientReferenceID         *string
	Created                   int64
	Currency                  Currency
	Customer                  string
	CustomerEmail             *string
	Metadata                  map[string]string
	PaymentIntent             *string
	PaymentMethodTypes        []string
	PaymentStatus             string
	ShippingAddressCollection map[string]bool
	Status                    string
	TotalDetails              map[string]int64
	Mode                      string
	Shipping                  map[string]string
	Discounts                 []map[string]string
	AutomaticTax              map[string]bool
	ExpiresAt                 *int64
	Subscription              *string
}

// CheckoutSessionEventData is the data payload of checkout.session.completed.
type CheckoutSessionEventData struct {
	Object CheckoutSession
}

func decodeCheckoutSessionEventData(raw json.RawMessage) (*CheckoutSessionEventData, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return nil, fieldErr("data", "must be an object")
	}

	objRaw, ok := o["object"]
	if !ok || isNull(objRaw) {
		return nil, fieldErr("data.object", "is required")
	}

	session, err := decodeCheckoutSession(objRaw)
	if err != nil {
		return nil, err
	}

	return &CheckoutSessionEventData{Object: *session}, nil
}

func decodeCheckoutSession(raw json.RawMessage) (*CheckoutSession, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return nil, fieldErr("data.object", "must be an object")
	}

	var s CheckoutSession

	if s.ID, err = o.requiredString("id"); err != nil {
		return nil, err
	}
	if s.Object, err = o.requiredString("object"); err != nil {
		return nil, err
	}
	if s.AmountSubtotal, err = o.minorUnits("amount_subtotal"); err != nil {
		return nil, err
	}
	if s.AmountTotal, err = o.minorUnits("amount_total"); err != nil {
		return nil, err
	}
	if s.CancelURL, err = o.requiredString("cancel_url"); err != nil {
		return nil, err
	}
	if s.SuccessURL, err = o.requiredString("success_url"); err != nil {
		return nil, err
	}
	if s.ClientReferenceID, err = o.optionalString("client_reference_id"); err != nil {
		return nil, err
	}
	if s.Created, err = o.requiredInt("created"); err != nil {
		return nil, err
	}
	if s.Currency, err = o.currency("currency"); err != nil {
		return nil, err
	}
	if s.Customer, err = o.requiredString("customer"); err != nil {
		return nil, err
	}
	if s.CustomerEmail, err = o.optionalString("customer_email"); err != nil {
		return nil, err
	}
	if s.Metadata, err = o.optionalStringMap("metadata"); err != nil {
		return nil, err
	}
	if s.PaymentIntent, err = o.optionalString("payment_intent"); err != nil {
		return nil, err
	}
	if s.PaymentMethodTypes, err = o.requiredStringSlice("payment_method_types"); err != nil {
		return nil, err
	}
	if s.PaymentStatus, err = o.requiredString("payment_status"); err != nil {
		return nil, err
	}
	if s.ShippingAddressCollection, err = o.optionalBoolMap("shipping_address_collection"); err != nil {
		return nil, err
	}
	if s.Status, err = o.requiredString("status"); err != nil {
		return nil, err
	}
	if s.TotalDetails, err = o.requiredIntMap("total_details"); err != nil {
		return nil, err
	}
	if s.Mode, err = o.requiredString("mode"); err != nil {
		return nil, err
	}
	if s.Shipping, err = o.optionalStringMap("shipping"); err != nil {
		return nil, err
	}
	if s.Discounts, err = o.optionalStringMapSlice("discounts"); err != nil {
		return nil, err
	}
	if s.AutomaticTax, err = o.optionalBoolMap("automatic_tax"); err != nil {
		return nil, err
	}
	if s.ExpiresAt, err = o.optionalInt("expires_at"); err != nil {
		return nil, err
	}
	if s.Subscription, err = o.optionalString("subscription"); err != nil {
		return nil, err
	}

	return &s, nil
}
