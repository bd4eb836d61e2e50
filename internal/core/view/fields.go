package view

import (
	"strconv"
	"strings"
)

// setField переносит значение из действия, только если поле передано.
func setField(dst *string, fields map[string]string, key string) {
	if v, ok := fields[key]; ok {
		*dst = v
	}
}

func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	return v, err == nil
}

func parseCount(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}
