// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseHelpers(t *testing.T) {
	t.Setenv("IONOVIEW_TEST_STR", "value")
	t.Setenv("IONOVIEW_TEST_EMPTY", "")
	t.Setenv("IONOVIEW_TEST_INT", "42")
	t.Setenv("IONOVIEW_TEST_BADINT", "forty")
	t.Setenv("IONOVIEW_TEST_DUR", "750ms")
	t.Setenv("IONOVIEW_TEST_BOOL", "off")
	t.Setenv("IONOVIEW_TEST_FLOAT", "0.5")

	assert.Equal(t, "value", ParseString("IONOVIEW_TEST_STR", "def"))
	assert.Equal(t, "def", ParseString("IONOVIEW_TEST_EMPTY", "def"))
	assert.Equal(t, "def", ParseString("IONOVIEW_TEST_UNSET", "def"))

	assert.Equal(t, 42, ParseInt("IONOVIEW_TEST_INT", 1))
	assert.Equal(t, 1, ParseInt("IONOVIEW_TEST_BADINT", 1))
	assert.Equal(t, 750*time.Millisecond, ParseDuration("IONOVIEW_TEST_DUR", time.Second))
	assert.False(t, ParseBool("IONOVIEW_TEST_BOOL", true))
	assert.True(t, ParseBool("IONOVIEW_TEST_UNSET", true))
	assert.InDelta(t, 0.5, ParseFloat("IONOVIEW_TEST_FLOAT", 1), 1e-9)
}

func TestParseLabels(t *testing.T) {
	labels, bad := ParseLabels("JPLD=Ground Truth: JPLD; IRI = Reference ;=orphan;broken;;")
	assert.Equal(t, map[string]string{
		"JPLD": "Ground Truth: JPLD",
		"IRI":  "Reference",
	}, labels)
	assert.Equal(t, []string{"=orphan", "broken"}, bad)
}
