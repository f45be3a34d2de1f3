/*
Package assert provides error collection for expressing many validation failures as one error.

A [Collector] gathers errors as validation code runs, and only becomes a non-nil error once something was added.
The collected errors remain visible to [errors.Is] and [errors.As], so callers can still match on sentinel errors.
*/
package assert
