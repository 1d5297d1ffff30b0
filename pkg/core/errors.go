package core

import "errors"

// Error kinds of the state machine. Every evaluator failure wraps exactly one
// of these so callers can classify without string matching.
var (
	// ErrValidation marks a failed precondition on operation data.
	ErrValidation = errors.New("validation error")
	// ErrAuthority marks a missing signing key or an unauthorized actor.
	ErrAuthority = errors.New("authority error")
	// ErrResource marks insufficient mana or oversize contract data.
	ErrResource = errors.New("resource error")
	// ErrNotFound marks a missing referenced entity.
	ErrNotFound = errors.New("not found")
	// ErrVM marks a script failure or budget exhaustion.
	ErrVM = errors.New("vm error")
	// ErrIngress marks block/transaction admission failures.
	ErrIngress = errors.New("ingress error")
)
