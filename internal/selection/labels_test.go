// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabels_Label(t *testing.T) {
	labels := Labels{"JPLD": "Ground Truth: JPLD", "EMPTY": ""}

	assert.Equal(t, "Ground Truth: JPLD", labels.Label("JPLD"))
	assert.Equal(t, "IRI", labels.Label("IRI"))
	assert.Equal(t, "EMPTY", labels.Label("EMPTY"))

	var nilLabels Labels
	assert.Equal(t, "LSTM", nilLabels.Label("LSTM"))
}

func TestLabels_Clone(t *testing.T) {
	orig := DefaultLabels()
	c := orig.Clone()
	c["JPLD"] = "changed"
	assert.Equal(t, "Ground Truth: JPLD", orig["JPLD"])
	assert.Len(t, c, 5)
}
