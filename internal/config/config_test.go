package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "reports", c.OutputDir)
	assert.Equal(t, "auto", c.Delimiter)
	assert.Equal(t, 3, c.MaxCategoricalCharts)
	assert.Equal(t, 4, c.MaxPairplotColumns)
	assert.Equal(t, 20, c.HistogramBins)
	assert.True(t, c.HistoryEnabled)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, []string{"html"}, c.ReportFormats)
	assert.Equal(t, filepath.Join(home, ".tidyloom", "history.db"), c.HistoryDB)
}

func TestLoadFileAndEnv(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte("output_dir: out\ndelimiter: \";\"\nhistogram_bins: 12\nreport_formats: [html, json]\n"), 0o644))
	t.Setenv("TIDYLOOM_HISTOGRAM_BINS", "30")
	t.Setenv("TIDYLOOM_DETECT_DATES", "true")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "out", c.OutputDir)
	assert.Equal(t, "semicolon", c.Delimiter)
	assert.Equal(t, 30, c.HistogramBins, "env wins over file")
	assert.True(t, c.DetectDates)
	assert.Equal(t, []string{"html", "json"}, c.ReportFormats)
}

func TestLoadRejectsInvalid(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte("log_level: loud\n"), 0o644))
	_, err := Load(p)
	assert.ErrorContains(t, err, "invalid config")
}

func TestSet(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)

	cases := []struct {
		key, val, want string
		wantErr        bool
	}{
		{key: "delimiter", val: "tab", want: "tab"},
		{key: "delimiter", val: "|", want: "pipe"},
		{key: "delimiter", val: "#", wantErr: true},
		{key: "histogram_bins", val: "50", want: "50"},
		{key: "histogram_bins", val: "0", wantErr: true},
		{key: "histogram_bins", val: "many", wantErr: true},
		{key: "max_pairplot_columns", val: "1", wantErr: true},
		{key: "detect_dates", val: "true", want: "true"},
		{key: "log_level", val: "DEBUG", want: "debug"},
		{key: "report_formats", val: "html, JSON ,md", want: "html,json,md"},
		{key: "report_formats", val: "pdf", wantErr: true},
		{key: "output_dir", val: "", wantErr: true},
		{key: "colour", val: "red", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.val, func(t *testing.T) {
			before, _ := c.Get(tc.key)
			err := c.Set(tc.key, tc.val)
			if tc.wantErr {
				require.Error(t, err)
				after, _ := c.Get(tc.key)
				assert.Equal(t, before, after, "unchanged on error")
				return
			}
			require.NoError(t, err)
			got, err := c.Get(tc.key)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("sheet_name", "Q3"))
	require.NoError(t, c.Set("history_enabled", "false"))
	require.NoError(t, Save(c, ""))

	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Q3", again.SheetName)
	assert.False(t, again.HistoryEnabled)
}

func TestKeysAreGettable(t *testing.T) {
	c := &Global{}
	for _, k := range Keys {
		_, err := c.Get(k)
		assert.NoError(t, err, k)
	}
}
