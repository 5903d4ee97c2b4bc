package sanapi

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Kind классифицирует ошибку обращения к удалённому API.
type Kind string

const (
	KindNetwork      Kind = "network"
	KindUnauthorized Kind = "unauthorized"
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindServer       Kind = "server"
	KindDecode       Kind = "decode"
	KindUnknown      Kind = "unknown"
)

// APIError описывает ошибку удалённого API: тип, HTTP-статус и поля ответа.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString("san api: ")
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf возвращает тип ошибки API или KindUnknown для прочих ошибок.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindUnknown
	}
}

// newStatusError разбирает тело ответа с ошибкой. Сервер отдаёт либо строку,
// либо объект с полем message, либо объект поле → сообщение.
func newStatusError(status int, body []byte) *APIError {
	e := &APIError{
		Kind:   kindForStatus(status),
		Status: status,
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		e.Message = http.StatusText(status)
		return e
	}

	var asString string
	if err := json.Unmarshal(body, &asString); err == nil {
		e.Message = asString
		return e
	}

	var asObject map[string]any
	if err := json.Unmarshal(body, &asObject); err != nil {
		e.Message = trimmed
		return e
	}

	for k, v := range asObject {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if k == "message" || k == "error" {
			if e.Message == "" {
				e.Message = s
			}
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string]string)
		}
		e.Fields[k] = s
	}
	if e.Message == "" && len(e.Fields) == 0 {
		e.Message = http.StatusText(status)
	}

	return e
}

// Flatten сводит ошибку к строке для показа пользователю: значения полей
// через перевод строки, иначе сообщение, иначе текст ошибки.
func Flatten(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}

	if len(apiErr.Fields) > 0 {
		keys := make([]string, 0, len(apiErr.Fields))
		for k := range apiErr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		values := make([]string, 0, len(keys))
		for _, k := range keys {
			values = append(values, apiErr.Fields[k])
		}
		return strings.Join(values, "\n")
	}

	if apiErr.Message != "" {
		return apiErr.Message
	}

	return apiErr.Error()
}
