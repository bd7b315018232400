// Package apperr define la taxonomía de errores del registro y su conversión
// a un resultado estructurado (success + message) en el borde del core.
package apperr

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateNumber = errors.New("record number already exists")
	ErrStorage         = errors.New("storage error")
)

// ValidationError lleva el detalle por campo. Nunca se reintenta.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "invalid input"
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Add registra un problema en field. El primer mensaje por campo gana.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = msg
}

// OrNil devuelve nil si no se acumuló ningún campo.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func Invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Storage marca err como falla de almacenamiento conservando la causa.
func Storage(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), ErrStorage)
}

func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Result es la forma en que el adapter devuelve cualquier operación.
type Result struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func OK(msg string) Result {
	return Result{Success: true, Message: msg}
}

func ToResult(err error) Result {
	if err == nil {
		return OK("ok")
	}
	if ve, ok := AsValidation(err); ok {
		return Result{Message: ve.Error(), Fields: ve.Fields}
	}
	switch {
	case errors.Is(err, ErrDuplicateNumber):
		return Result{Message: ErrDuplicateNumber.Error()}
	case errors.Is(err, ErrNotFound):
		return Result{Message: "record not found"}
	default:
		// storage y desconocidos: no filtramos detalles internos
		return Result{Message: "internal error"}
	}
}

func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if _, ok := AsValidation(err); ok {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, ErrDuplicateNumber):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
