// SPDX-License-Identifier: Apache-2.0

package obfuscate

import (
	"regexp"

	"github.com/pgmask/pgmask/pkg/directive"
)

// evaluateConditions reports whether any condition in the ordered list
// holds against row (keyed by column name), stopping at the first match.
// An empty list always holds.
func (o *Obfuscator) evaluateConditions(conditions []directive.Condition, row map[string]string) bool {
	if len(conditions) == 0 {
		return true
	}

	for _, c := range conditions {
		actual := row[c.ColumnName]

		switch c.Operation {
		case directive.OpEqual:
			if actual == c.Value {
				return true
			}
		case directive.OpNotEqual:
			if actual != c.Value {
				return true
			}
		case directive.OpByPattern:
			re := o.compilePattern(c.Value)
			if re != nil && re.MatchString(actual) {
				return true
			}
		}
	}
	return false
}

// compilePattern memoizes condition regexes, since the same by_pattern
// condition is evaluated once per row for the lifetime of the run. An
// invalid pattern is cached as nil so it is never silently retried.
func (o *Obfuscator) compilePattern(pattern string) *regexp.Regexp {
	if re, ok := o.patternCache[pattern]; ok {
		return re
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		o.patternCache[pattern] = nil
		return nil
	}

	o.patternCache[pattern] = re
	return re
}
