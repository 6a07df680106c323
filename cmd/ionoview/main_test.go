// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/ionoview/internal/catalog"
	"github.com/ManuGH/ionoview/internal/config"
	"github.com/ManuGH/ionoview/internal/selection"
	"github.com/ManuGH/ionoview/internal/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mediaDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("GIF89a"), 0o600))
	}
	t.Setenv(config.EnvPrefix+"DATA_DIR", dir)
	return dir
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version.String()+"\n", out)
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "ionoview.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	_, err = execute(t, "config", "init", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfigExists))

	_, err = execute(t, "config", "init", "--force", path)
	require.NoError(t, err)

	out, err = execute(t, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "config OK")
}

func TestConfigValidate_RejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataDir: /tmp\nbogus: 1\n"), 0o600))

	_, err := execute(t, "config", "validate", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrUnknownConfigField))
}

func TestCatalogList(t *testing.T) {
	mediaDir(t, "TEC_JPLD_Quiet.gif", "TEC_IRI_Storm.gif", "readme.md")

	out, err := execute(t, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "SOURCE")
	assert.Contains(t, out, "Ground Truth: JPLD")
	assert.NotContains(t, out, "readme.md")

	out, err = execute(t, "catalog", "list", "--json")
	require.NoError(t, err)
	var entries []catalog.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 2)
}

func TestCatalogList_MissingDirectory(t *testing.T) {
	t.Setenv(config.EnvPrefix+"DATA_DIR", filepath.Join(t.TempDir(), "missing"))

	_, err := execute(t, "catalog", "list")
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrCatalogUnavailable))
}

func TestResolveCommand(t *testing.T) {
	mediaDir(t, "TEC_JPLD_Quiet.gif", "TEC_JPLD_Storm.gif", "TEC_IRI_Moderate.gif")

	out, err := execute(t, "resolve", "--source", "IRI", "--state", "Storm")
	require.NoError(t, err)

	var res selection.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "IRI", res.SelectedSource)
	assert.Equal(t, catalog.Storm, res.RequestedState)
	assert.Equal(t, catalog.Moderate, res.SelectedState)
	require.NotNil(t, res.Match)
	assert.Equal(t, "TEC_IRI_Moderate.gif", res.Match.File)
}
