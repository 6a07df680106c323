// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/ionoview/internal/log"
)

// EnvPrefix is prepended to every environment key read by the loader.
const EnvPrefix = "IONOVIEW_"

// ParseString returns the value of key, or def when it is unset or blank.
func ParseString(key, def string) string {
	return fromEnv(key, def, func(s string) (string, error) { return s, nil })
}

// ParseInt returns key as an integer, or def when it is unset, blank or malformed.
func ParseInt(key string, def int) int {
	return fromEnv(key, def, strconv.Atoi)
}

// ParseDuration reads key in time.ParseDuration form ("750ms", "5s").
func ParseDuration(key string, def time.Duration) time.Duration {
	return fromEnv(key, def, time.ParseDuration)
}

// ParseBool accepts the strconv.ParseBool forms plus yes/no and on/off.
func ParseBool(key string, def bool) bool {
	return fromEnv(key, def, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "yes", "on":
			return true, nil
		case "no", "off":
			return false, nil
		}
		return strconv.ParseBool(s)
	})
}

// ParseFloat returns key as a float64, or def.
func ParseFloat(key string, def float64) float64 {
	return fromEnv(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// fromEnv logs overrides at debug and malformed values at warn; a malformed
// value never aborts startup.
func fromEnv[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	logger := log.WithComponent("config")
	v, err := parse(raw)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Str("value", raw).Interface("default", def).Msg("ignoring malformed environment value")
		return def
	}
	logger.Debug().Str("key", key).Str(log.FieldSource, "environment").Msg("environment override")
	return v
}

// ParseLabels parses "KEY=Label;KEY2=Other Label" into a map. Malformed pairs
// are skipped and reported through the returned slice.
func ParseLabels(raw string) (map[string]string, []string) {
	out := make(map[string]string)
	var bad []string
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			bad = append(bad, part)
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, bad
}
