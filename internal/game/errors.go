package game

import "errors"

var (
	// ErrInvalidState is returned when a command does not fit the current phase
	ErrInvalidState = errors.New("invalid state")
	// ErrIllegalAction is returned for out-of-turn play, acting while folded,
	// checking while a call is owed, or calling with nothing owed
	ErrIllegalAction = errors.New("illegal action")
	// ErrInvalidAction is returned for an unrecognised action kind
	ErrInvalidAction = errors.New("invalid action")
	// ErrNotEnoughChips is returned when a raise exceeds the stack
	ErrNotEnoughChips = errors.New("not enough chips")
	// ErrSeatTaken is returned when joining an occupied seat
	ErrSeatTaken = errors.New("seat taken")
	// ErrNoSeatAvailable is returned when the table is full or the seat does not exist
	ErrNoSeatAvailable = errors.New("no seat available")
	// ErrNotSeated is returned when a seat has no occupant
	ErrNotSeated = errors.New("not seated")
)
