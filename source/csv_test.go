package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpenCSV_ReadsHeader(t *testing.T) {
	path := writeCSV(t, "isbn,title,author\n978-1,Go,Donovan\n")

	src, err := OpenCSV(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, []string{"isbn", "title", "author"}, src.Columns())
}

func TestOpenCSV_MissingFile(t *testing.T) {
	_, err := OpenCSV(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestCSVSourceNext_MapsRowsByColumn(t *testing.T) {
	path := writeCSV(t, "isbn,title\n978-1,Go\n978-2,Rust\n")

	src, err := OpenCSV(path)
	require.NoError(t, err)
	defer src.Close()

	records, err := src.Next(context.Background(), 10)
	assert.ErrorIs(t, err, io.EOF, "final group and end of input coincide")

	require.Len(t, records, 2)
	assert.Equal(t, "978-1", records[0]["isbn"])
	assert.Equal(t, "Go", records[0]["title"])
	assert.Equal(t, "978-2", records[1]["isbn"])
}

func TestCSVSourceNext_Batches(t *testing.T) {
	path := writeCSV(t, "isbn\n1\n2\n3\n4\n5\n")

	src, err := OpenCSV(path)
	require.NoError(t, err)
	defer src.Close()

	first, err := src.Next(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := src.Next(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, second, 2)

	last, err := src.Next(context.Background(), 2)
	assert.ErrorIs(t, err, io.EOF)
	assert.Len(t, last, 1)

	again, err := src.Next(context.Background(), 2)
	assert.ErrorIs(t, err, io.EOF, "a drained source stays drained")
	assert.Empty(t, again)
}

func TestCSVSourceNext_MalformedRowIsStructural(t *testing.T) {
	path := writeCSV(t, "isbn,title\n978-1,Go\n978-2,Rust,extra,fields\n978-3,C\n")

	src, err := OpenCSV(path)
	require.NoError(t, err)
	defer src.Close()

	first, err := src.Next(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	_, err = src.Next(context.Background(), 10)
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "wrong number of fields")
}

func TestCSVSourceNext_QuotedFields(t *testing.T) {
	path := writeCSV(t, "isbn,title\n\"978-1\",\"Go, The Language\"\n")

	src, err := OpenCSV(path)
	require.NoError(t, err)
	defer src.Close()

	records, err := src.Next(context.Background(), 10)
	assert.ErrorIs(t, err, io.EOF)

	require.Len(t, records, 1)
	assert.Equal(t, "Go, The Language", records[0]["title"], "quoted commas stay inside the field")
}

func TestCSVSourceNext_ContextCanceled(t *testing.T) {
	path := writeCSV(t, "isbn\n1\n2\n")

	src, err := OpenCSV(path)
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = src.Next(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
}
