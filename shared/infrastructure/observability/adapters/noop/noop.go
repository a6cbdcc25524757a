// Package noop provides Logger and Metrics implementations that discard everything
package noop

import "firds/shared/domain/observability"

type Metrics struct{}

func NewMetrics() *Metrics { return &Metrics{} }

func (m *Metrics) IncrementCounter(string, map[string]string)         {}
func (m *Metrics) RecordHistogram(string, float64, map[string]string) {}
func (m *Metrics) RecordGauge(string, float64, map[string]string)     {}
func (m *Metrics) WithTags(map[string]string) observability.Metrics   { return m }

type Logger struct{}

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) Debug(string, ...interface{})                           {}
func (l *Logger) Info(string, ...interface{})                            {}
func (l *Logger) Warn(string, ...interface{})                            {}
func (l *Logger) Error(string, ...interface{})                           {}
func (l *Logger) WithFields(map[string]interface{}) observability.Logger { return l }
