package oplog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry() Entry {
	return Entry{
		Session:   "3f0c9a52-1111-4c1e-9d1e-2a6f0e0b7c11",
		Timestamp: 5,
		Operation: "transfer",
		Args:      []string{"B", "A", "200"},
		Result:    "1000",
	}
}

func TestAppend_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.csv")
	require.NoError(t, Append(path, []Entry{testEntry()}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, testEntry(), entries[0])
}

func TestAppend_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.csv")
	require.NoError(t, Append(path, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Timestamp = 6
	e2.Operation = "pay"
	e2.Args = []string{"A", "5000"}
	e2.Result = ""
	e2.Error = "insufficient funds: \"A\" has 2200, needs 5000"
	require.NoError(t, Append(path, []Entry{e2}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "transfer", entries[0].Operation)
	assert.Equal(t, e2, entries[1])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), Header), "header is written once")
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.csv")
	require.NoError(t, os.WriteFile(path, []byte(Header+"\n"), 0o644))

	entries, err := Read(path)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestMarshalEntry(t *testing.T) {
	row := MarshalEntry(testEntry())
	assert.Equal(t, []string{"3f0c9a52-1111-4c1e-9d1e-2a6f0e0b7c11", "5", "transfer", "B;A;200", "1000", ""}, row)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	assert.ErrorContains(t, err, "expected 6 fields")

	_, err = UnmarshalEntry([]string{"s", "later", "pay", "", "", ""})
	assert.ErrorContains(t, err, "parsing timestamp")
}

func TestAppend_CreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ops.csv")
	require.NoError(t, Append(path, []Entry{testEntry()}))

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
