// Package positions turns a chronological log of buy and sell transactions
// into realized and unrealized gains.
//
// The core functionalities include:
//   - Ledger: a validated, single-currency log of trades for any number of
//     users, always kept in processing order (creation time, then ID).
//   - Lot matching: every sell consumes the oldest open lots of its
//     instrument first (FIFO). A sell larger than the open lots is matched
//     partially and reported as an oversell rather than failing.
//   - Accounting: a stateless Accountant replays the ledger on every query
//     to compute a user's realized gain, the realized return of one sell,
//     and the open holdings with their FIFO cost basis.
//   - Reports: the all-time winnings of a user, realized plus unrealized,
//     where open lots are marked to market with a PriceLookup.
//   - Persistence: JSONL encoding of ledgers and JSON quote documents read
//     with jsonpath expressions.
//
// Lot queues are never cached: the results are a pure function of the
// transactions, so a backdated or corrected transaction is always taken into
// account.
package positions
