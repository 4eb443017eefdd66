// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfdocx/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", dbFile))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var base = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	entries := []types.HistoryEntry{
		{Source: "a.pdf", Destination: "a.docx", Pages: 3, Status: types.ConversionDone, StartedAt: base, Duration: 1500 * time.Millisecond},
		{BatchID: "b1", Source: "b.pdf", Destination: "b.docx", Status: types.ConversionFailed, ErrorKind: "SourceNotFound", Error: "no such file", StartedAt: base.Add(time.Minute)},
		{BatchID: "b1", Source: "c.pdf", Destination: "c.docx", Pages: 1, Status: types.ConversionDone, StartedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		_, err := s.Record(ctx, e)
		require.NoError(t, err)
	}
}

func TestRecord_FillsIDAndTime(t *testing.T) {
	s := testStore(t)
	s.now = func() time.Time { return base }

	got, err := s.Record(context.Background(), types.HistoryEntry{Source: "a.pdf", Destination: "a.docx", Status: types.ConversionDone})
	require.NoError(t, err)
	assert.Len(t, got.ID, 36)
	assert.Equal(t, base, got.StartedAt)
}

func TestRecord_RequiresStatus(t *testing.T) {
	s := testStore(t)
	_, err := s.Record(context.Background(), types.HistoryEntry{Source: "a.pdf"})
	require.Error(t, err)
}

func TestList(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c.pdf", all[0].Source, "most recent first")
	assert.Equal(t, "a.pdf", all[2].Source)
	assert.Equal(t, 1500*time.Millisecond, all[2].Duration)
	assert.True(t, all[2].StartedAt.Equal(base))
	assert.Empty(t, all[2].BatchID)

	failed, err := s.List(ctx, Filter{FailedOnly: true})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, types.ConversionFailed, failed[0].Status)
	assert.Equal(t, "SourceNotFound", failed[0].ErrorKind)
	assert.Equal(t, "no such file", failed[0].Error)

	batch, err := s.List(ctx, Filter{BatchID: "b1"})
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	limited, err := s.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "c.pdf", limited[0].Source)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), dbFile)
	s, err := Open(path)
	require.NoError(t, err)
	seed(t, s)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	all, err := s.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestExport(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	var jsonBuf bytes.Buffer
	require.NoError(t, s.Export(ctx, &jsonBuf, Filter{}, FormatJSON))
	var fromJSON []types.HistoryEntry
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &fromJSON))
	assert.Len(t, fromJSON, 3)

	var yamlBuf bytes.Buffer
	require.NoError(t, s.Export(ctx, &yamlBuf, Filter{FailedOnly: true}, FormatYAML))
	var fromYAML []map[string]any
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "b.pdf", fromYAML[0]["source"])

	require.Error(t, s.Export(ctx, &bytes.Buffer{}, Filter{}, "xml"))
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/data", "pdfdocx", dbFile), DefaultPath())

	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, filepath.Join("/home/tester", ".local", "share", "pdfdocx", dbFile), DefaultPath())
}

func TestNewBatchID(t *testing.T) {
	a, b := NewBatchID(), NewBatchID()
	assert.NotEqual(t, a, b)
}
