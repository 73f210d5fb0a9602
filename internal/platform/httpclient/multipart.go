package httpclient

import (
	"io"
	"reflect"

	"github.com/go-resty/resty/v2"
)

// Multipart es un body multipart/form-data. Se envía sin Content-Type
// explícito para que el boundary lo defina el transport.
type Multipart struct {
	Fields map[string]string
	Files  []MultipartFile
}

type MultipartFile struct {
	Param    string
	FileName string
	Reader   io.Reader
}

func (m *Multipart) apply(req *resty.Request) {
	if len(m.Fields) > 0 {
		req.SetMultipartFormData(m.Fields)
	}
	for _, f := range m.Files {
		req.SetFileReader(f.Param, f.FileName, f.Reader)
	}
}

// isNil detecta nil y punteros/maps/slices nil (p.ej. (*string)(nil)).
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return rv.Elem().Interface()
	}
	return v
}
