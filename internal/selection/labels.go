// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package selection

// Labels maps source identifiers to human-readable display labels.
type Labels map[string]string

// DefaultLabels returns the label table used when no configuration overrides it.
func DefaultLabels() Labels {
	return Labels{
		"JPLD": "Ground Truth: JPLD",
		"IRI":  "International Reference Ionosphere",
		"LSTM": "IonCast LSTM",
		"SFNO": "IonCast SFNO",
		"GNN":  "IonCast GNN",
	}
}

// Label returns the display label for source, or source itself when unknown.
func (l Labels) Label(source string) string {
	if label, ok := l[source]; ok && label != "" {
		return label
	}
	return source
}

// Clone returns an independent copy of l.
func (l Labels) Clone() Labels {
	out := make(Labels, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}
