// SPDX-License-Identifier: Apache-2.0

// Package logging wraps pterm's structured logger for obfuscation-run
// events: a narrow interface naming the events a run cares about, plus a
// noop implementation for silent/tested callers.
package logging

import "github.com/pterm/pterm"

// Logger is responsible for logging one obfuscation run.
type Logger interface {
	LogDirectiveRegistered(kind, table, column string)
	LogTableDeleted(table string)
	LogUnknownTableMutation(table, mutationName string)

	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type runLogger struct {
	logger pterm.Logger
}

type noopLogger struct{}

// New returns a Logger backed by pterm's default logger.
func New() Logger {
	return &runLogger{logger: pterm.DefaultLogger}
}

// NewNoop returns a Logger that discards every event, for tests and
// library callers that don't want run output.
func NewNoop() Logger {
	return &noopLogger{}
}

func (l *runLogger) LogDirectiveRegistered(kind, table, column string) {
	args := []any{"kind", kind, "table", table}
	if column != "" {
		args = append(args, "column", column)
	}
	l.logger.Info("registered directive", l.logger.Args(args...))
}

func (l *runLogger) LogTableDeleted(table string) {
	l.logger.Info("table marked for deletion", l.logger.Args("table", table))
}

func (l *runLogger) LogUnknownTableMutation(table, mutationName string) {
	l.logger.Warn("ignoring unknown table mutation", l.logger.Args("table", table, "mutation_name", mutationName))
}

func (l *runLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.logger.Args(args...))
}

func (l *runLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, l.logger.Args(args...))
}

func (l *noopLogger) LogDirectiveRegistered(kind, table, column string)  {}
func (l *noopLogger) LogTableDeleted(table string)                       {}
func (l *noopLogger) LogUnknownTableMutation(table, mutationName string) {}
func (l *noopLogger) Info(msg string, args ...any)                      {}
func (l *noopLogger) Error(msg string, args ...any)                     {}
