// Package errs holds the error types shared by every layer of the fulfillment service.
//
// Two families live here:
//   - value errors (ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError,
//     ObjectNotFoundError) raised by domain constructors and repositories;
//   - pipeline errors (ValidationError, ConfigurationError, ExhaustionError, TransportError)
//     that decide how the dispatch pipeline reacts to a failure.
//
// Every type unwraps to a sentinel, so callers classify with errors.Is:
//
//	if errors.Is(err, errs.ErrValidation) {
//	    // reject the order, do not retry
//	}
package errs
