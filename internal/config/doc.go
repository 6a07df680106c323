// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the viewer configuration from defaults, an optional
// strict YAML file and IONOVIEW_* environment variables, in increasing order of
// precedence, and keeps it current through Holder.
package config
