package domain

import (
	"errors"
	"fmt"
)

// Определение ошибок генерации
var (
	ErrInvalidConfig   = errors.New("invalid generation config")
	ErrSinkFailure     = errors.New("bulk insert failed")
	ErrCancelled       = errors.New("generation cancelled")
	ErrUnknownKind     = errors.New("unknown entity kind")
	ErrUnknownMode     = errors.New("unknown relationship mode")
	ErrUnknownStore    = errors.New("unknown store")
	ErrLengthMismatch  = errors.New("sink returned wrong number of identifiers")
	ErrUnexpectedValue = errors.New("record does not match its kind")
)

// ConfigError - недопустимое значение конфигурации, обнаруженное до записи
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%v: %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// SinkError - сбой записи чанка; Chunk нумеруется с 1 в пределах типа
type SinkError struct {
	Kind  string
	Chunk int
	Err   error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s: kind %s, chunk %d: %v", ErrSinkFailure, e.Kind, e.Chunk, e.Err)
}

func (e *SinkError) Unwrap() []error {
	return []error{ErrSinkFailure, e.Err}
}

// CancelledError - запуск остановлен по отмене или дедлайну контекста
type CancelledError struct {
	Kind  string
	Chunk int
	Err   error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("%s before kind %s, chunk %d: %v", ErrCancelled, e.Kind, e.Chunk, e.Err)
}

func (e *CancelledError) Unwrap() []error {
	return []error{ErrCancelled, e.Err}
}
