// internal/pkg/errs/errs.go
package errs

import (
	"errors"

	cr "github.com/cockroachdb/errors"
)

// ErrDependencyUnavailable marks failures of an external collaborator
// (cache, inventory source, database) as opposed to business-rule failures.
var ErrDependencyUnavailable = errors.New("dependency unavailable")

// Wrap annotates err with msg and a stack trace. nil stays nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

// Dependency wraps err with msg and marks it as a dependency failure.
func Dependency(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Mark(cr.Wrap(err, msg), ErrDependencyUnavailable)
}

// IsDependency reports whether err was marked with Dependency.
func IsDependency(err error) bool {
	return cr.Is(err, ErrDependencyUnavailable)
}
