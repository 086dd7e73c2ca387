// SPDX-License-Identifier: Apache-2.0

package generator

import "fmt"

// UnknownMutationError reports a directive referencing a mutation_name
// absent from the registry. Always fatal.
type UnknownMutationError struct {
	Name string
}

func (e UnknownMutationError) Error() string {
	return fmt.Sprintf("generator: unknown mutation %q", e.Name)
}

// UniquenessExhaustedError reports a unique-flagged generator that could
// not produce a fresh value within its retry budget.
type UniquenessExhaustedError struct {
	Name     string
	Attempts int
}

func (e UniquenessExhaustedError) Error() string {
	return fmt.Sprintf("generator: mutation %q could not produce a unique value after %d attempts", e.Name, e.Attempts)
}

// GeneratorFailureError reports a generator invocation that returned an
// error (bad kwargs, invalid range, empty choice list, ...).
type GeneratorFailureError struct {
	Name string
	Err  error
}

func (e GeneratorFailureError) Error() string {
	return fmt.Sprintf("generator: mutation %q failed: %v", e.Name, e.Err)
}

func (e GeneratorFailureError) Unwrap() error {
	return e.Err
}
