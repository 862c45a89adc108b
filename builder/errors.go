package builder

import "errors"

// ErrBudgetExhausted is returned when the validation gate's retry budget is
// consumed without a passing build. The wrapped message and Result.Diagnostic
// carry the last build diagnostic.
var ErrBudgetExhausted = errors.New("retry budget exhausted")
