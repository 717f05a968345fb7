package sinks

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemSink_Write(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := NewFilesystemSink(fs)
	assert.Equal(t, "filesystem", sink.Kind())

	require.NoError(t, sink.Write(t.Context(), "results.json", bytes.NewBufferString(`{"a":1}`)))
	require.NoError(t, sink.Write(t.Context(), "nested/dir/acme.json", bytes.NewBufferString(`{"b":2}`)))

	content, err := afero.ReadFile(fs, "results.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(content))

	content, err = afero.ReadFile(fs, "nested/dir/acme.json")
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(content))
}

func TestFilesystemSink_Overwrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := NewFilesystemSink(fs)

	require.NoError(t, sink.Write(t.Context(), "results.json", bytes.NewBufferString("first run, longer content")))
	require.NoError(t, sink.Write(t.Context(), "results.json", bytes.NewBufferString("second")))

	content, err := afero.ReadFile(fs, "results.json")
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestNewFilesystemSinkFromPath(t *testing.T) {
	fs := afero.NewMemMapFs()

	sink, err := NewFilesystemSinkFromPath(fs, "out/reports/")
	require.NoError(t, err)

	exists, err := afero.DirExists(fs, "out/reports")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, sink.Write(t.Context(), "results.json", bytes.NewBufferString("{}")))

	content, err := afero.ReadFile(fs, "out/reports/results.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(content))
}

func TestNewFilesystemSinkFromPath_WorkingDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()

	sink, err := NewFilesystemSinkFromPath(fs, ".")
	require.NoError(t, err)
	require.NoError(t, sink.Write(t.Context(), "results.json", bytes.NewBufferString("{}")))

	exists, err := afero.Exists(fs, "results.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStreamSink_Write(t *testing.T) {
	var buf bytes.Buffer
	sink := NewStreamSink(&buf)
	assert.Equal(t, "stream", sink.Name())

	require.NoError(t, sink.Write(t.Context(), "ignored.json", bytes.NewBufferString("hello\n")))
	require.NoError(t, sink.Write(t.Context(), "ignored.json", bytes.NewBufferString("world\n")))
	assert.Equal(t, "hello\nworld\n", buf.String())
	require.NoError(t, sink.Close(t.Context()))
}
