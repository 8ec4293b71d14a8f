package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ToUint64 converts various types to uint64 using explicit type switching.
// It handles standard integer types, floats, json.Number, strings and byte
// slices. Negative or unparseable values yield zero.
func ToUint64(val any) uint64 {
	switch v := val.(type) {
	case uint64:
		return v
	case uint:
		return uint64(v)
	case uint32:
		return uint64(v)
	case uint16:
		return uint64(v)
	case uint8:
		return uint64(v)
	case int:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case int64:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case int32:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case float64:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case float32:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case json.Number:
		u, _ := strconv.ParseUint(v.String(), 10, 64)
		return u
	case string:
		u, _ := strconv.ParseUint(v, 10, 64)
		return u
	case []byte:
		u, _ := strconv.ParseUint(string(v), 10, 64)
		return u
	default:
		s := fmt.Sprintf("%v", v)
		u, _ := strconv.ParseUint(s, 10, 64)
		return u
	}
}

// ToString converts various types to string.
func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool converts various types to bool.
// It handles bool, numeric types (1=true), and strings ("1", "true").
func ToBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		return ToUint64(v) == 1
	case float64:
		return v == 1
	case json.Number:
		return v.String() == "1"
	case string:
		return v == "1" || strings.ToLower(v) == "true"
	case []byte:
		s := string(v)
		return s == "1" || strings.ToLower(s) == "true"
	default:
		return false
	}
}
