package positions

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeLedger decodes transactions from a stream of JSONL data, one
// transaction per line, and returns a validated, sorted Ledger.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var tx Transaction
		if err := json.Unmarshal(lineBytes, &tx); err != nil {
			return nil, fmt.Errorf("line %d: could not decode transaction %q: %w", line, string(lineBytes), err)
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ledger: %w", err)
	}

	ledger := NewLedger()
	if err := ledger.Append(txs...); err != nil {
		return nil, err
	}
	return ledger, nil
}

// EncodeTransaction writes a single transaction as a JSON line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction %d: %w", tx.ID, err)
	}

	// Write the JSON data followed by a newline to create the JSONL format.
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeLedger persists the ledger to w in JSONL format, in processing order.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	for _, tx := range ledger.transactions {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}
