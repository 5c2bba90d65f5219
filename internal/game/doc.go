// Package game implements the authoritative state machine for a single
// Texas Hold'em table.
//
// The main type is Table, which owns the seats, the deck, the pot and the
// turn pointer for one table and moves through the phases
//
//	idle → preflop → flop → turn → river → showdown → idle
//
// # Basic Usage
//
//	t := game.NewTable(id, game.DefaultConfig(), game.WithRNG(rng))
//	_ = t.Sit(0, "client-a", "Alice")
//	_ = t.Sit(1, "client-b", "Bob")
//	_, _ = t.StartHand()
//	out, err := t.ApplyAction(t.Turn(), game.Call, 0)
//	if out.Showdown != nil {
//	    // hand finished, pot already paid out
//	}
//
// # Deterministic Testing
//
// Inject a seeded *rand.Rand with WithRNG, or stack the deck completely with
// WithDeckSource and poker.NewDeckFromCards.
//
// # Concurrency
//
// A Table is not safe for concurrent use. Callers serialize every command
// for a table through a single owner; the registry package does this with a
// per-table lock.
package game
