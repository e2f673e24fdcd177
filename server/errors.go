package server

import "errors"

var (
	// ErrEngineRequired is returned when New is called without an engine.
	ErrEngineRequired = errors.New("engine is required")

	// ErrServerClosed is returned by Run after a graceful shutdown.
	ErrServerClosed = errors.New("server closed")
)
