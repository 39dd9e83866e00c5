package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	for _, s := range []string{"*", "all", "ALL", " * "} {
		got, err := ParseTarget(s)
		require.NoError(t, err, s)
		assert.True(t, got.All, s)
	}

	got, err := ParseTarget("17")
	require.NoError(t, err)
	assert.Equal(t, Target{TagID: 17}, got)
	assert.Equal(t, "tag 17", got.String())

	for _, s := range []string{"", "abc", "0", "-3", "1.5", "17x"} {
		_, err := ParseTarget(s)
		assert.ErrorIs(t, err, ErrConfig, s)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]string{"-db-dir", "/hydrus/db"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "/hydrus/db", cfg.DBDir)
	assert.Equal(t, filepath.Join("/hydrus/db", "client.master.db"), cfg.MasterDB())
	assert.Equal(t, filepath.Join("/hydrus/db", "client.caches.db"), cfg.CachesDB())
	assert.Equal(t, "*", cfg.Tag)
	assert.Equal(t, int64(10), cfg.MinPxy)
	assert.Equal(t, int64(Disabled), cfg.MinPxOrPy)
	assert.Equal(t, Disabled, cfg.ProcessingLimit)
	assert.Equal(t, "combined_files_ac_cache_5", cfg.FilesTable)
	assert.Equal(t, "specific_current_mappings_cache_1_5", cfg.MappingsTable)
	assert.Equal(t, "tag_pairs", cfg.OutputTable)
	assert.Equal(t, "out.db", cfg.Output)
}

func TestParseConfigFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagmi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_dir: /from/file
tag: "42"
min_pxy: 3
min_px_or_py: 7
processing_limit: 100
files_table: combined_files_ac_cache_2
verbose: true
validate: true
`), 0o644))

	cfg, err := ParseConfig([]string{"-config", path, "-min-pxy", "-1", "-tag", "*"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "/from/file", cfg.DBDir)
	assert.Equal(t, "*", cfg.Tag, "flag wins over file")
	assert.Equal(t, int64(Disabled), cfg.MinPxy, "flag wins over file")
	assert.Equal(t, int64(7), cfg.MinPxOrPy)
	assert.Equal(t, 100, cfg.ProcessingLimit)
	assert.Equal(t, "combined_files_ac_cache_2", cfg.FilesTable)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.RunValidation)

	cfg, err = ParseConfig([]string{"-db-dir", "/x", "-validate"}, io.Discard)
	require.NoError(t, err)
	assert.True(t, cfg.RunValidation)
}

func TestParseConfigErrors(t *testing.T) {
	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("db_dir: /x\nmin_pxx: 3\n"), 0o644))

	cases := map[string][]string{
		"missing db dir":      {},
		"bad selector":        {"-db-dir", "/x", "-tag", "seventeen"},
		"threshold too low":   {"-db-dir", "/x", "-min-pxy", "-2"},
		"single too low":      {"-db-dir", "/x", "-min-px-or-py", "-5"},
		"limit too low":       {"-db-dir", "/x", "-limit", "-2"},
		"table injection":     {"-db-dir", "/x", "-files-table", "t; DROP TABLE tags"},
		"output table quotes": {"-db-dir", "/x", "-output-table", `a"b`},
		"positional args":     {"-db-dir", "/x", "extra"},
		"missing file":        {"-config", filepath.Join(dir, "nope.yaml")},
		"unknown yaml key":    {"-config", unknown},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig(args, io.Discard)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}
