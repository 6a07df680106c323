// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strings"
	"testing"
)

// TestMain isolates the package from IONOVIEW_* variables of the caller's shell.
func TestMain(m *testing.M) {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, EnvPrefix) {
			_ = os.Unsetenv(key)
		}
	}
	os.Exit(m.Run())
}
