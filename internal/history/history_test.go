package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, f := range []string{"jan.csv", "feb.csv", "mar.csv"} {
		r := &Run{File: f, RowsIn: 10 + i, RowsOut: 9 + i, RowsRemoved: 1, Columns: 4, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, s.Record(ctx, r))
		assert.NotEmpty(t, r.ID)
	}

	runs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "mar.csv", runs[0].File)
	assert.Equal(t, "feb.csv", runs[1].File)
	assert.Equal(t, 12, runs[0].RowsIn)
	assert.True(t, runs[0].CreatedAt.Equal(base.Add(2*time.Hour)))

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRecordDefaults(t *testing.T) {
	s := openMemory(t)
	fixed := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	r := &Run{File: "a.csv", ReportPath: "reports/a.html"}
	require.NoError(t, s.Record(context.Background(), r))
	assert.Len(t, r.ID, 36)
	assert.Equal(t, fixed, r.CreatedAt)

	runs, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "reports/a.html", runs[0].ReportPath)
}

func TestRecordDuplicateID(t *testing.T) {
	s := openMemory(t)
	r := &Run{ID: "same", File: "a.csv"}
	require.NoError(t, s.Record(context.Background(), r))
	assert.Error(t, s.Record(context.Background(), &Run{ID: "same", File: "b.csv"}))
}

func TestOpenFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(p)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), &Run{File: "x.csv"}))
	require.NoError(t, s.Close())

	s, err = Open(p)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
