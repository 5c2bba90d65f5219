package server

import (
	"errors"

	"github.com/lox/pokey/internal/game"
	"github.com/lox/pokey/internal/registry"
)

// Error codes sent in error messages
const (
	CodeInvalidState       = "invalid_state"
	CodeIllegalAction      = "illegal_action"
	CodeInvalidAction      = "invalid_action"
	CodeNotEnoughChips     = "not_enough_chips"
	CodeSeatTaken          = "seat_taken"
	CodeNoSeatAvailable    = "no_seat_available"
	CodeNotSeated          = "not_seated"
	CodeTableNotFound      = "table_not_found"
	CodeInvalidMessage     = "invalid_message"
	CodeUnknownMessageType = "unknown_message_type"
	CodeInternal           = "internal_error"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{game.ErrInvalidState, CodeInvalidState},
	{game.ErrIllegalAction, CodeIllegalAction},
	{game.ErrInvalidAction, CodeInvalidAction},
	{game.ErrNotEnoughChips, CodeNotEnoughChips},
	{game.ErrSeatTaken, CodeSeatTaken},
	{game.ErrNoSeatAvailable, CodeNoSeatAvailable},
	{game.ErrNotSeated, CodeNotSeated},
	{registry.ErrTableNotFound, CodeTableNotFound},
}

// errorCode maps a command error to the code reported to the client
func errorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}
