package game

import "fmt"

const (
	DefaultMaxSeats      = 6
	DefaultSmallBlind    = 10
	DefaultBigBlind      = 20
	DefaultStartingStack = 2000
)

// Config holds the fixed parameters of a table
type Config struct {
	Name          string
	MaxSeats      int
	SmallBlind    int
	BigBlind      int
	StartingStack int
	// MinRaise is the raise size used when a raise omits its amount.
	// Defaults to the big blind.
	MinRaise int
}

// DefaultConfig returns the stakes of a standard table
func DefaultConfig() Config {
	return Config{
		MaxSeats:      DefaultMaxSeats,
		SmallBlind:    DefaultSmallBlind,
		BigBlind:      DefaultBigBlind,
		StartingStack: DefaultStartingStack,
		MinRaise:      DefaultBigBlind,
	}
}

// WithDefaults fills zero values from DefaultConfig
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.MaxSeats == 0 {
		c.MaxSeats = d.MaxSeats
	}
	if c.SmallBlind == 0 {
		c.SmallBlind = d.SmallBlind
	}
	if c.BigBlind == 0 {
		c.BigBlind = d.BigBlind
	}
	if c.StartingStack == 0 {
		c.StartingStack = d.StartingStack
	}
	if c.MinRaise == 0 {
		c.MinRaise = c.BigBlind
	}
	return c
}

// Validate checks the stakes are playable
func (c Config) Validate() error {
	if c.MaxSeats < 2 || c.MaxSeats > 10 {
		return fmt.Errorf("max seats must be between 2 and 10, got %d", c.MaxSeats)
	}
	if c.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive")
	}
	if c.BigBlind < c.SmallBlind {
		return fmt.Errorf("big blind must be at least the small blind")
	}
	if c.StartingStack < c.BigBlind {
		return fmt.Errorf("starting stack must cover the big blind")
	}
	if c.MinRaise <= 0 {
		return fmt.Errorf("minimum raise must be positive")
	}
	return nil
}
