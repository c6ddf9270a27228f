// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package clog provides context aware logging.
// It stores arbitrary labels (e.g. invocation id) to each context,
// so that log entries of a tool invocation carry the invocation's labels.
package clog

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
)

type contextKeyType int

var contextKey contextKeyType

// New creates a new Logger that writes to l.
// If l is nil, it uses the default logger.
func New(l *log.Logger) *Logger {
	return &Logger{l: l}
}

// NewContext sets the given logger to the context.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey, logger)
}

// NewSpan sets a new logger with the given labels to the context.
// Labels of the logger in ctx are inherited.
func NewSpan(ctx context.Context, labels map[string]string) context.Context {
	return NewContext(ctx, FromContext(ctx).Span(labels))
}

// FromContext returns a logger in the context, or a logger that
// writes to the default logger if it's not set.
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey).(*Logger)
	if !ok {
		return &Logger{}
	}
	return logger
}

// Logger is a logger with labels.
type Logger struct {
	l      *log.Logger
	labels map[string]string
}

// Span returns a sub logger with additional labels.
func (l *Logger) Span(labels map[string]string) *Logger {
	m := make(map[string]string, len(l.labels)+len(labels))
	for k, v := range l.labels {
		m[k] = v
	}
	for k, v := range labels {
		m[k] = v
	}
	return &Logger{
		l:      l.l,
		labels: m,
	}
}

// Labels returns labels of the logger.
func (l *Logger) Labels() map[string]string {
	return l.labels
}

func (l *Logger) logger() *log.Logger {
	base := l.l
	if base == nil {
		base = log.Default()
	}
	if len(l.labels) == 0 {
		return base
	}
	keys := make([]string, 0, len(l.labels))
	for k := range l.labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		kv = append(kv, k, l.labels[k])
	}
	return base.With(kv...)
}

// Debugf logs at debug log level in the manner of fmt.Printf.
func (l *Logger) Debugf(format string, args ...any) {
	l.logger().Debug(fmt.Sprintf(format, args...))
}

// Infof logs at info log level in the manner of fmt.Printf.
func (l *Logger) Infof(format string, args ...any) {
	l.logger().Info(fmt.Sprintf(format, args...))
}

// Warningf logs at warning log level in the manner of fmt.Printf.
func (l *Logger) Warningf(format string, args ...any) {
	l.logger().Warn(fmt.Sprintf(format, args...))
}

// Errorf logs at error log level in the manner of fmt.Printf.
func (l *Logger) Errorf(format string, args ...any) {
	l.logger().Error(fmt.Sprintf(format, args...))
}

// Debugf logs at debug log level in the manner of fmt.Printf.
func Debugf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Debugf(format, args...)
}

// Infof logs at info log level in the manner of fmt.Printf.
func Infof(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Infof(format, args...)
}

// Warningf logs at warning log level in the manner of fmt.Printf.
func Warningf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Warningf(format, args...)
}

// Errorf logs at error log level in the manner of fmt.Printf.
func Errorf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Errorf(format, args...)
}
