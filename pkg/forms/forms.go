// Package forms decodes admin payloads (JSON objects or url-encoded forms)
// into domain structs.
//
// Keys follow the json tags of the target. Values are weakly typed the way
// HTML forms submit them: "3" fills an int, "on" a bool, "a,b" a slice.
package forms

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Values is a decoded payload.
type Values map[string]any

// FromURLValues flattens url.Values. Keys with one value become strings,
// repeated keys keep all values.
func FromURLValues(in url.Values) Values {
	out := make(Values, len(in))
	for k, vs := range in {
		switch len(vs) {
		case 0:
		case 1:
			out[k] = vs[0]
		default:
			out[k] = append([]string(nil), vs...)
		}
	}
	return out
}

// FromStruct renders v (a domain struct) as form values using its json tags.
func FromStruct(v any) (Values, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := Values{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Int64 reads key as an id, returning 0 when missing or malformed.
func (v Values) Int64(key string) int64 {
	var out struct {
		V int64 `json:"v"`
	}
	if err := Decode(Values{"v": v[key]}, &out); err != nil {
		return 0
	}
	return out.V
}

// Decode fills dst from values. Conversion failures are reported as a
// *domain.ValidationError keyed by field.
func Decode(values Values, dst any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
		Result:           dst,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			checkboxHook,
			blankNumberHook,
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(values)); err != nil {
		return toValidation(err)
	}
	return nil
}

// checkboxHook accepts the HTML checkbox values.
func checkboxHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	switch strings.ToLower(strings.TrimSpace(data.(string))) {
	case "on", "yes", "y":
		return true, nil
	case "off", "no", "n", "":
		return false, nil
	}
	return data, nil
}

// blankNumberHook treats an empty input as zero.
func blankNumberHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if strings.TrimSpace(data.(string)) == "" {
			return 0, nil
		}
	}
	return data, nil
}

var fieldPattern = regexp.MustCompile(`'([^']*)'`)

func toValidation(err error) error {
	v := domain.NewValidationError()
	msgs := []string{err.Error()}
	if merr, ok := err.(*mapstructure.Error); ok {
		msgs = merr.Errors
	}
	for _, msg := range msgs {
		field := domain.NonFieldErrors
		if m := fieldPattern.FindStringSubmatch(msg); m != nil && m[1] != "" {
			// Nested fields come back as parent[0].child; report the top level.
			field = strings.FieldsFunc(m[1], func(r rune) bool { return r == '[' || r == '.' })[0]
		}
		v.Add(field, "Enter a valid value.")
	}
	return v
}
