package stripe

import (
	"encoding/json"
	"time"
)

// Transfer mirrors the provider's transfer object.
type Transfer struct {
	ID                 string
	Object             string
	Amount             int64
	AmountReversed     int64
	BalanceTransaction *string
	Created            int64
	Currency           Currency
	Description        *string
	Destination        *string
	DestinationPayment *string
	Livemode           bool
	Metadata           map[string]any
	Reversals          map[string]any
	Reversed           bool
	SourceTransaction  *string
	SourceType         *string
	TransferGroup      *string
}

// Date is the transfer creation time in local time.
func (t Transfer) Date() time.Time {
	return time.Unix(t.Created, 0)
}

// TransferEventData is the data payload of transfer.reversed events.
type TransferEventData struct {
	Object Transfer
}

func decodeTransferEventData(raw json.RawMessage) (*TransferEventData, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return nil, fieldErr("data", "must be an object")
	}

	objRaw, ok := o["object"]
	if !ok || isNull(objRaw) {
		return nil, fieldErr("data.object", "is required")
	}

	transfer, err := decodeTransfer(objRaw)
	if err != nil {
		return nil, err
	}

	return &TransferEventData{Object: *transfer}, nil
}

func decodeTransfer(raw json.RawMessage) (*Transfer, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return nil, fieldErr("data.object", "must be an object")
	}

	var t Transfer

	if t.ID, err = o.requiredString("id"); err != nil {
		return nil, err
	}
	if t.Object, err = o.requiredString("object"); err != nil {
		return nil, err
	}
	if t.Amount, err = o.minorUnits("amount"); err != nil {
		return nil, err
	}
	if t.AmountReversed, err = o.minorUnits("amount_reversed"); err != nil {
		return nil, err
	}
	if t.BalanceTransaction, err = o.optionalString("balance_transaction"); err != nil {
		return nil, err
	}
	if t.Created, err = o.requiredInt("created"); err != nil {
		return nil, err
	}
	if t.Currency, err = o.currency("currency"); err != nil {
		return nil, err
	}
	if t.Description, err = o.optionalString("description"); err != nil {
		return nil, err
	}
	if t.Destination, err = o.optionalString("destination"); err != nil {
		return nil, err
	}
	if t.DestinationPayment, err = o.optionalString("destination_payment"); err != nil {
		return nil, err
	}
	if t.Livemode, err = o.requiredBool("livemode"); err != nil {
		return nil, err
	}
	if t.Metadata, err = o.requiredAnyMap("metadata"); err != nil {
		return nil, err
	}
	if t.Reversals, err = o.requiredAnyMap("reversals"); err != nil {
		return nil, err
	}
	if t.Reversed, err = o.requiredBool("reversed"); err != nil {
		return nil, err
	}
	if t.SourceTransaction, err = o.optionalString("source_transaction"); err != nil {
		return nil, err
	}
	if t.SourceType, err = o.optionalString("source_type"); err != nil {
		return nil, err
	}
	if t.TransferGroup, err = o.optionalString("transfer_group"); err != nil {
		return nil, err
	}

	return &t, nil
}
