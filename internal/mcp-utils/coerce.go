// Package mcputils contains shared helpers for MCP tool handlers.
package mcputils

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ArgumentGetter is the slice of an MCP request the binder needs.
type ArgumentGetter interface {
	GetArguments() map[string]interface{}
}

// CoerceBindArguments binds MCP request arguments onto a target struct with
// type coercion. Some MCP clients send every argument as a string, including
// numbers, booleans, and JSON-encoded arrays; those are decoded before the
// usual field mapping. Field names follow json tags.
func CoerceBindArguments[T any](request ArgumentGetter, target *T) error {
	jsonStringHook := func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		raw := data.(string)
		if raw == "" {
			return data, nil
		}
		trimmed := strings.TrimSpace(raw)

		switch {
		case t.Kind() == reflect.Slice && strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			slicePtr := reflect.New(t)
			if err := json.Unmarshal([]byte(trimmed), slicePtr.Interface()); err == nil {
				return slicePtr.Elem().Interface(), nil
			}
		case t.Kind() == reflect.Bool && (trimmed == "true" || trimmed == "false"):
			return trimmed == "true", nil
		case t.Kind() >= reflect.Int && t.Kind() <= reflect.Float64:
			var num json.Number
			if err := json.Unmarshal([]byte(trimmed), &num); err == nil {
				return num, nil
			}
		}
		return data, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(request.GetArguments())
}
