package positions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// ErrNoPrice is returned when no current price is known for an instrument.
var ErrNoPrice = errors.New("no price")

// PriceLookup gives the current market price of an instrument.
type PriceLookup interface {
	Price(instrument string) (Money, error)
}

// Prices is a PriceLookup backed by a map.
type Prices map[string]Money

func (p Prices) Price(instrument string) (Money, error) {
	price, ok := p[instrument]
	if !ok {
		return Money{}, fmt.Errorf("%w for %q", ErrNoPrice, instrument)
	}
	return price, nil
}

// Quotes is a PriceLookup that reads prices out of a JSON document.
//
// The path is a jsonpath expression where "{instrument}" is replaced by the
// instrument being looked up, for instance `$.quotes["{instrument}"].last`.
type Quotes struct {
	doc      any
	path     string
	currency string
}

// DecodeQuotes reads a JSON quotes document from r.
func DecodeQuotes(r io.Reader, path, currency string) (*Quotes, error) {
	var doc any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("could not decode quotes: %w", err)
	}
	return &Quotes{doc: doc, path: path, currency: currency}, nil
}

// FetchQuotes downloads a JSON quotes document. Responses are cached on disk
// for the day.
func FetchQuotes(addr, path, currency string) (*Quotes, error) {
	return fetchQuotes(daily(), addr, path, currency)
}

func fetchQuotes(client *http.Client, addr, path, currency string) (*Quotes, error) {
	var doc any
	if err := jwget(client, addr, &doc); err != nil {
		return nil, fmt.Errorf("could not fetch quotes: %w", err)
	}
	return &Quotes{doc: doc, path: path, currency: currency}, nil
}

// Price evaluates the quotes path for the instrument.
func (q *Quotes) Price(instrument string) (Money, error) {
	path := strings.ReplaceAll(q.path, "{instrument}", instrument)
	jval, err := jsonpath.Get(path, q.doc)
	if err != nil {
		return Money{}, fmt.Errorf("%w for %q: %q: %w", ErrNoPrice, instrument, path, err)
	}
	// jsonpath may return a list of one answer or the answer itself: keep the
	// first one if any.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return Money{}, fmt.Errorf("%w for %q: %q matched nothing", ErrNoPrice, instrument, path)
		}
		jval = jlist[0]
	}

	var d decimal.Decimal
	switch v := jval.(type) {
	case json.Number:
		d, err = decimal.NewFromString(v.String())
	case float64:
		d = decimal.NewFromFloat(v)
	case string:
		// some services use a decimal comma and spaces as thousand separators
		v = strings.ReplaceAll(v, ",", ".")
		v = strings.ReplaceAll(v, " ", "")
		d, err = decimal.NewFromString(v)
	default:
		err = fmt.Errorf("not a number: %v", jval)
	}
	if err != nil {
		return Money{}, fmt.Errorf("%w for %q: %w", ErrNoPrice, instrument, err)
	}
	if !d.IsPositive() {
		return Money{}, fmt.Errorf("%w for %q: got %s", ErrNoPrice, instrument, d)
	}
	return M(d, q.currency), nil
}
