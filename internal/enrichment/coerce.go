package enrichment

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/spf13/cast"
)

func walk(m map[string]any, p path) (any, bool) {
	var cur any = m
	for _, key := range p {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, json.Number,
		float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// lookupString finds a string field; non-string scalars are formatted
func lookupString(metadata map[string]any, keys []path) string {
	for _, p := range keys {
		v, ok := walk(metadata, p)
		if !ok || !isScalar(v) {
			continue
		}
		if s := toString(v); s != "" {
			return s
		}
	}
	return ""
}

// lookupFloat finds a numeric field; numeric-looking strings are parsed
func lookupFloat(metadata map[string]any, keys []path) *float64 {
	for _, p := range keys {
		v, ok := walk(metadata, p)
		if !ok || !isScalar(v) {
			continue
		}
		if f, ok := toFloat(v); ok {
			return &f
		}
	}
	return nil
}

func toString(v any) string {
	if t, ok := v.(string); ok {
		return strings.TrimSpace(t)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// toFloat rejects booleans and non-finite values
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case bool:
		return 0, false
	case string:
		v = strings.TrimSpace(t)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
