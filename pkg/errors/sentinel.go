package errors

import stdErrors "errors"

// ErrKeyNotFound is returned when a remove is attempted against a key
// absent from the index, and by the public Instance.Get on a miss.
// Unlike the structured error types above, callers only ever need to
// distinguish this one case, so it is a plain sentinel checked with
// errors.Is rather than a struct with its own fluent builder.
var ErrKeyNotFound = stdErrors.New("key not found")
