// Package validate junta los errores de formulario (locales, nunca llegan al API).
package validate

import (
	"errors"
	"strings"
)

var ErrInvalidInput = errors.New("invalid input")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors es la lista de campos inválidos. errors.Is(err, ErrInvalidInput) == true.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e Errors) Is(target error) bool { return target == ErrInvalidInput }

// Collector acumula errores por campo.
type Collector struct {
	errs Errors
}

func (c *Collector) Add(field, msg string) {
	c.errs = append(c.errs, FieldError{Field: field, Message: msg})
}

func (c *Collector) Required(field, v string) {
	if strings.TrimSpace(v) == "" {
		c.Add(field, "is required")
	}
}

func (c *Collector) Check(ok bool, field, msg string) {
	if !ok {
		c.Add(field, msg)
	}
}

// Err devuelve nil si no hubo errores.
func (c *Collector) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}

// Fields extrae los errores por campo de err (si los tiene).
func Fields(err error) []FieldError {
	var ve Errors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
