// Package guard marks values that were built through their constructor so that
// zero values of commands and value objects can be told apart from real ones.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate on a zero guard when the
// caller did not supply its own error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded as a field in values that must only be produced by
// their constructor. The zero value reports "not constructed".
//
// Example:
//
//	type SubmitOrderCommand struct {
//	    basket []order.BasketLine
//	    guard  guard.ConstructorGuard
//	}
//
//	func (c SubmitOrderCommand) Validate() error {
//	    return c.guard.Validate(ErrSubmitOrderCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	constructed bool
}

// NewConstructorGuard returns a guard in the constructed state.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{constructed: true}
}

// Validate returns nil for a constructed guard. Otherwise it returns
// validationError, or ErrDefaultConstructorGuard when validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.constructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
