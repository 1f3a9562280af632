package services

import (
	"errors"
	"fmt"

	"catamaze/server/models"
	"catamaze/server/persistence"
)

// Protocol error codes.
const (
	CodeGameNotFound  = "GAME_NOT_FOUND"
	CodeGameOver      = "GAME_OVER"
	CodeInvalidAction = "INVALID_ACTION"
	CodeEntityDead    = "ENTITY_DEAD"
	CodeAtCapacity    = "AT_CAPACITY"
	CodeBadRequest    = "BAD_REQUEST"
	CodeInternal      = "INTERNAL"
)

var ErrAtCapacity = errors.New("server at capacity")

// Error is a failure the boundary reports to clients as a code and message.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// classify wraps err with the protocol code of the sentinel it carries.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}

	code := CodeInternal
	switch {
	case errors.Is(err, persistence.ErrGameNotFound):
		code = CodeGameNotFound
	case errors.Is(err, models.ErrGameOver):
		code = CodeGameOver
	case errors.Is(err, models.ErrInvalidAction):
		code = CodeInvalidAction
	case errors.Is(err, models.ErrEntityDead):
		code = CodeEntityDead
	case errors.Is(err, ErrAtCapacity):
		code = CodeAtCapacity
	}
	return &Error{Code: code, Message: "failed to " + op, Err: err}
}

// ErrorCode returns the protocol code of err.
func ErrorCode(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeInternal
}
