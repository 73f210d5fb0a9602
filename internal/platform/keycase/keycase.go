// Package keycase convierte las keys de un árbol JSON genérico
// (map[string]any / []any / escalares) entre snake_case y camelCase.
//
// Las funciones no modifican el input: devuelven un árbol nuevo con la misma
// forma y solo cambian la ortografía de las keys.
package keycase

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxDepth limita la recursión. Los payloads del API son finitos y acíclicos,
// pero un árbol armado a mano podría contener ciclos.
const MaxDepth = 64

var ErrTooDeep = errors.New("keycase: max depth exceeded")

// ToCamel convierte recursivamente keys "first_name" => "firstName".
func ToCamel(v any) (any, error) {
	return transform(v, CamelKey, 0)
}

// ToSnake convierte recursivamente keys "firstName" => "first_name".
// No es inversa exacta de ToCamel (p.ej. "a__b" o siglas).
func ToSnake(v any) (any, error) {
	return transform(v, SnakeKey, 0)
}

// CamelKey reemplaza cada "_x" (x en a-z) por "X". Otros "_" quedan tal cual.
func CamelKey(k string) string {
	if !strings.Contains(k, "_") {
		return k
	}
	var b strings.Builder
	b.Grow(len(k))
	for i := 0; i < len(k); i++ {
		c := k[i]
		if c == '_' && i+1 < len(k) && k[i+1] >= 'a' && k[i+1] <= 'z' {
			b.WriteByte(k[i+1] - 'a' + 'A')
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// SnakeKey reemplaza cada "X" (A-Z) por "_x".
func SnakeKey(k string) string {
	var b strings.Builder
	b.Grow(len(k) + 4)
	for i := 0; i < len(k); {
		r, size := utf8.DecodeRuneInString(k[i:])
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteString(k[i : i+size])
		}
		i += size
	}
	return b.String()
}

func transform(v any, key func(string) string, depth int) (any, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}

	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			c, err := transform(child, key, depth+1)
			if err != nil {
				return nil, err
			}
			out[key(k)] = c
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			c, err := transform(child, key, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	default:
		// escalares y nil pasan sin cambios
		return v, nil
	}
}
