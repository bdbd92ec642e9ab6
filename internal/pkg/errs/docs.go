// Package errs holds the typed errors shared by the domain and the adapters.
//
// Each type wraps one sentinel (ErrObjectNotFound, ErrValueIsRequired and so
// on) through Unwrap, so callers classify failures with errors.Is while the
// message still names the offending parameter. The HTTP layer maps the
// sentinels onto status codes.
package errs
