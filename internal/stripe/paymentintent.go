package stripe

import "encoding/json"

// PaymentIntent mirrors the provider's payment intent object.
//
// Currency is a free-form string rather than the Currency enum: intents can
// carry currencies the platform does not handle as first-class, and rejecting
// them here would drop events the provider considers valid.
type PaymentIntent struct {
	ID                 string
	Amount             int64
	AmountReceived     int64
	Currency           string
	Status             string
	PaymentMethod      *string
	PaymentMethodTypes []string
	ConfirmationMethod string
	Created            int64
	Customer           *string
	Description        *string
	Metadata           map[string]string
	ReceiptEmail       *string
	Shipping           map[string]string
	TransferGroup      *string
	TransferData       map[string]string
	LastPaymentError   *LastPaymentError
}

// LastPaymentError carries the provider's description of the most recent
// payment failure on an intent.
type LastPaymentError struct {
	Code          *string
	Message       *string
	Type          *string
	PaymentMethod map[string]any
}

// PaymentIntentEventData is the data payload of payment_intent.succeeded and
// payment_intent.payment_failed events.
type PaymentIntentEventData struct {
	Object PaymentIntent
}

func decodePaymentIntentEventData(raw json.RawMessage) (*PaymentIntentEventData, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return nil, fieldErr("data", "must be an object")
	}

	objRaw, ok := o["object"]
	if !ok || isNull(objRaw) {
		return nil, fieldErr("data.object", "is required")
	}

	intent, err := decodePaymentIntent(objRaw)
	if err != nil {
		return nil, err
	}

	return &PaymentIntentEventData{Object: *intent}, nil
}

func decodePaymentIntent(raw json.RawMessage) (*PaymentIntent, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return nil, fieldErr("data.object", "must be an object")
	}

	var p PaymentIntent

	if p.ID, err = o.requiredString("id"); err != nil {
		return nil, err
	}
	if p.Amount, err = o.minorUnits("amount"); err != nil {
		return nil, err
	}
	if p.AmountReceived, err = o.minorUnits("amount_received"); err != nil {
		return nil, err
	}
	if p.Currency, err = o.requiredString("currency"); err != nil {
		return nil, err
	}
	if p.Status, err = o.requiredString("status"); err != nil {
		return nil, err
	}
	if p.PaymentMethod, err = o.optionalString("payment_method"); err != nil {
		return nil, err
	}
	if p.PaymentMethodTypes, err = o.requiredStringSlice("payment_method_types"); err != nil {
		return nil, err
	}
	if p.ConfirmationMethod, err = o.requiredString("confirmation_method"); err != nil {
		return nil, err
	}
	if p.Created, err = o.requiredInt("created"); err != nil {
		return nil, err
	}
	if p.Customer, err = o.optionalString("customer"); err != nil {
		return nil, err
	}
	if p.Description, err = o.optionalString("description"); err != nil {
		return nil, err
	}
	if p.Metadata, err = o.optionalStringMap("metadata"); err != nil {
		return nil, err
	}
	if p.ReceiptEmail, err = o.optionalString("receipt_email"); err != nil {
		return nil, err
	}
	if p.Shipping, err = o.optionalStringMap("shipping"); err != nil {
		return nil, err
	}
	if p.TransferGroup, err = o.optionalString("transfer_group"); err != nil {
		return nil, err
	}
	if p.TransferData, err = o.optionalStringMap("transfer_data"); err != nil {
		return nil, err
	}

	if errRaw, ok := o["last_payment_error"]; ok && !isNull(errRaw) {
		lastErr, err := decodeLastPaymentError(errRaw)
		if err != nil {
			return nil, err
		}
		p.LastPaymentError = lastErr
	}

	return &p, nil
}

func decodeLastPaymentError(raw json.RawMessage) (*LastPaymentError, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return nil, fieldErr("last_payment_error", "must be an object")
	}

	var e LastPaymentError

	if e.Code, err = o.optionalString("code"); err != nil {
		return nil, err
	}
	if e.Message, err = o.optionalString("message"); err != nil {
		return nil, err
	}
	if e.Type, err = o.optionalString("type"); err != nil {
		return nil, err
	}
	if e.PaymentMethod, err = o.optionalAnyMap("payment_method"); err != nil {
		return nil, err
	}

	return &e, nil
}
