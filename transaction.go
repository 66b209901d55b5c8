package positions

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ID identifies a transaction. IDs are unique within a ledger and break ties
// between transactions created at the same instant.
type ID int64

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// Action is the direction of a trade.
type Action string

// Trade actions.
const (
	Buy  Action = "buy"
	Sell Action = "sell"
)

// ParseAction parses "buy" or "sell".
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case Buy, Sell:
		return a, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

var (
	// ErrInvalidTransaction is wrapped by every validation failure.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrUnknownTransaction is returned when an ID is not in the ledger.
	ErrUnknownTransaction = errors.New("unknown transaction")
)

// Transaction is the immutable record of one trade.
type Transaction struct {
	ID         ID
	User       string
	Instrument string
	Action     Action
	Quantity   Quantity // number of entries traded.
	Price      Money    // unit price at execution.
	TotalPrice Money    // cash actually paid or received, as persisted.
	CreatedAt  time.Time
	Memo       string
}

// NewBuy creates a buy transaction. The total price is quantity*price.
func NewBuy(id ID, createdAt time.Time, user, instrument string, quantity Quantity, price Money) Transaction {
	return newTrade(Buy, id, createdAt, user, instrument, quantity, price)
}

// NewSell creates a sell transaction. The total price is quantity*price.
func NewSell(id ID, createdAt time.Time, user, instrument string, quantity Quantity, price Money) Transaction {
	return newTrade(Sell, id, createdAt, user, instrument, quantity, price)
}

func newTrade(action Action, id ID, createdAt time.Time, user, instrument string, quantity Quantity, price Money) Transaction {
	return Transaction{
		ID:         id,
		User:       user,
		Instrument: instrument,
		Action:     action,
		Quantity:   quantity,
		Price:      price,
		TotalPrice: price.Mul(quantity),
		CreatedAt:  createdAt,
	}
}

// Currency returns the currency the transaction is expressed in.
func (t Transaction) Currency() string { return t.Price.Currency() }

// Validate checks the invariants of a trade: positive quantity and price, a
// known action, an owner and an instrument.
func (t Transaction) Validate() error {
	var errs []error
	if t.User == "" {
		errs = append(errs, errors.New("user is missing"))
	}
	if t.Instrument == "" {
		errs = append(errs, errors.New("instrument is missing"))
	}
	if _, err := ParseAction(string(t.Action)); err != nil {
		errs = append(errs, err)
	}
	if !t.Quantity.IsPositive() {
		errs = append(errs, fmt.Errorf("quantity must be positive, got %s", t.Quantity))
	}
	if !t.Price.IsPositive() {
		errs = append(errs, fmt.Errorf("price must be positive, got %s", t.Price.Decimal()))
	}
	if t.TotalPrice.IsNegative() {
		errs = append(errs, fmt.Errorf("total price cannot be negative, got %s", t.TotalPrice.Decimal()))
	}
	if t.Price.Currency() != t.TotalPrice.Currency() {
		errs = append(errs, fmt.Errorf("price currency %q does not match total price currency %q", t.Price.Currency(), t.TotalPrice.Currency()))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w %d: %w", ErrInvalidTransaction, t.ID, errors.Join(errs...))
	}
	return nil
}

// compareTransactions orders transactions by creation time, then by ID.
func compareTransactions(a, b Transaction) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortTransactions sorts txs in processing order: ascending creation time,
// ties broken by ascending ID.
func SortTransactions(txs []Transaction) {
	slices.SortStableFunc(txs, compareTransactions)
}

// MarshalJSON writes the transaction with a stable field order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("createdAt", t.CreatedAt.UTC().Format(time.RFC3339Nano))
	w.Append("user", t.User)
	w.Append("instrument", t.Instrument)
	w.Append("action", t.Action)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price.value)
	w.Append("totalPrice", t.TotalPrice.value)
	w.Optional("currency", t.Currency())
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

// UnmarshalJSON reads the format written by MarshalJSON. A missing total
// price defaults to quantity*price.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID         ID               `json:"id"`
		CreatedAt  time.Time        `json:"createdAt"`
		User       string           `json:"user"`
		Instrument string           `json:"instrument"`
		Action     Action           `json:"action"`
		Quantity   Quantity         `json:"quantity"`
		Price      decimal.Decimal  `json:"price"`
		TotalPrice *decimal.Decimal `json:"totalPrice"`
		Currency   string           `json:"currency"`
		Memo       string           `json:"memo"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*t = Transaction{
		ID:         temp.ID,
		User:       temp.User,
		Instrument: temp.Instrument,
		Action:     temp.Action,
		Quantity:   temp.Quantity,
		Price:      M(temp.Price, temp.Currency),
		CreatedAt:  temp.CreatedAt,
		Memo:       temp.Memo,
	}
	if temp.TotalPrice != nil {
		t.TotalPrice = M(*temp.TotalPrice, temp.Currency)
	} else {
		t.TotalPrice = t.Price.Mul(t.Quantity)
	}
	return nil
}
