// SPDX-License-Identifier: Apache-2.0

// Package generator implements the value-generator registry: a closed,
// name-keyed catalogue of replacement-value callables, plus the
// unique-within-run wrapper. Concrete generator bodies are a pluggable
// default implementation; the library of concrete value generators and
// locale-specific fake-data backends are kept separate from the core
// dispatch and uniqueness logic.
package generator

import (
	"encoding/json"
	"sort"

	"github.com/pgmask/pgmask/pkg/directive"
)

// maxUniqueAttempts is the retry budget before a unique-flagged generator
// gives up and reports UniquenessExhausted.
const maxUniqueAttempts = 1000

// Func produces a replacement value for one row. kwargs is the directive's
// opaque parameter bundle; row is every already-obfuscated field of the
// current row (by column name), for generators such as uuid5 that derive
// a value from another column.
type Func func(kwargs directive.Kwargs, row map[string]string) (string, error)

// Registry is a name-keyed mapping from mutation name to Func, plus the
// per-run unique-value tracking (the "unique set"). It is owned by a
// single obfuscator run and is not safe for concurrent mutation.
type Registry struct {
	locale string
	funcs  map[string]Func
	seen   map[string]map[string]struct{}
}

// New builds a registry over the built-in catalogue, initialized once per
// run with a locale; it may hold per-locale caches.
func New(locale string) *Registry {
	r := &Registry{
		locale: locale,
		funcs:  make(map[string]Func),
		seen:   make(map[string]map[string]struct{}),
	}
	registerBuiltins(r)
	return r
}

// Register adds or replaces a named generator. Used both to install the
// built-in catalogue and to let a caller plug in a locale-aware "real"
// fake-data backend for the free-text generators.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Has reports whether name is a known mutation, for directive parsing's
// UnknownMutation check.
func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// Locale returns the registry's configured locale.
func (r *Registry) Locale() string {
	return r.locale
}

// Generate invokes the named generator, applying the unique-within-run
// wrapper when kwargs.Unique is set. row holds every already-obfuscated
// field of the current row, keyed by column name.
func (r *Registry) Generate(name string, kwargs directive.Kwargs, row map[string]string) (string, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return "", UnknownMutationError{Name: name}
	}

	if !kwargs.Unique {
		value, err := fn(kwargs, row)
		if err != nil {
			return "", GeneratorFailureError{Name: name, Err: err}
		}
		return value, nil
	}

	bucket := r.uniqueBucket(name, kwargs)

	for attempt := 0; attempt < maxUniqueAttempts; attempt++ {
		value, err := fn(kwargs, row)
		if err != nil {
			return "", GeneratorFailureError{Name: name, Err: err}
		}

		if _, taken := bucket[value]; !taken {
			bucket[value] = struct{}{}
			return value, nil
		}
	}

	return "", UniquenessExhaustedError{Name: name, Attempts: maxUniqueAttempts}
}

// uniqueBucket returns the per-(mutation_name, kwargs fingerprint) set of
// already-emitted values: two differently-parameterized uses of the same
// mutation (e.g. two `phone_number` columns with different formats) draw
// from independent pools, keyed per call-site rather than per mutation
// name alone.
func (r *Registry) uniqueBucket(name string, kwargs directive.Kwargs) map[string]struct{} {
	key := name + ":" + fingerprint(kwargs)

	bucket, ok := r.seen[key]
	if !ok {
		bucket = make(map[string]struct{})
		r.seen[key] = bucket
	}
	return bucket
}

func fingerprint(kwargs directive.Kwargs) string {
	keys := make([]string, 0, len(kwargs.Raw))
	for k := range kwargs.Raw {
		if k == "unique" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make(map[string]any, len(keys))
	for _, k := range keys {
		ordered[k] = kwargs.Raw[k]
	}

	encoded, err := json.Marshal(ordered)
	if err != nil {
		return ""
	}
	return string(encoded)
}
