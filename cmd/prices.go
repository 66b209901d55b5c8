package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/positions"
	"github.com/etnz/positions/config"
	"github.com/shopspring/decimal"
)

// pricesFlag collects -price INSTRUMENT=VALUE flags.
type pricesFlag map[string]decimal.Decimal

func (p pricesFlag) String() string {
	var parts []string
	for k, v := range p {
		parts = append(parts, k+"="+v.String())
	}
	return strings.Join(parts, ",")
}

func (p pricesFlag) Set(s string) error {
	instrument, value, ok := strings.Cut(s, "=")
	if !ok || instrument == "" {
		return fmt.Errorf("price must be INSTRUMENT=VALUE, got %q", s)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("invalid price for %s: %w", instrument, err)
	}
	p[instrument] = d
	return nil
}

// priceChain looks up prices in each PriceLookup in turn.
type priceChain []positions.PriceLookup

func (c priceChain) Price(instrument string) (positions.Money, error) {
	err := fmt.Errorf("%w for %q", positions.ErrNoPrice, instrument)
	for _, l := range c {
		price, lerr := l.Price(instrument)
		if lerr == nil {
			return price, nil
		}
		if !errors.Is(lerr, positions.ErrNoPrice) {
			return positions.Money{}, lerr
		}
		err = lerr
	}
	return positions.Money{}, err
}

// priceLookup combines the prices given on the command line with the
// configured quotes document, if any.
func priceLookup(cfg *config.Config, currency string, given pricesFlag) (positions.PriceLookup, error) {
	prices := make(positions.Prices, len(given))
	for k, v := range given {
		prices[k] = positions.M(v, currency)
	}
	chain := priceChain{prices}

	quotesCurrency := cfg.Quotes.Currency
	if quotesCurrency == "" {
		quotesCurrency = currency
	}
	switch {
	case cfg.Quotes.File != "":
		f, err := os.Open(cfg.Quotes.File)
		if err != nil {
			return nil, fmt.Errorf("error opening quotes file: %w", err)
		}
		defer f.Close()
		q, err := positions.DecodeQuotes(f, cfg.Quotes.Path, quotesCurrency)
		if err != nil {
			return nil, err
		}
		chain = append(chain, q)
	case cfg.Quotes.URL != "":
		q, err := positions.FetchQuotes(cfg.Quotes.URL, cfg.Quotes.Path, quotesCurrency)
		if err != nil {
			return nil, err
		}
		chain = append(chain, q)
	}
	return chain, nil
}

// printJSON prints v as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
