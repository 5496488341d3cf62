package source

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader отдает заранее заданные куски, пустой кусок имитирует таймаут
type chunkReader struct {
	chunks []string
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	chunk := c.chunks[0]
	c.chunks = c.chunks[1:]
	return copy(p, chunk), nil
}

func TestLineReaderSplitsChunks(t *testing.T) {
	lr := NewLineReader(&chunkReader{chunks: []string{`{"node":`, `"A"}` + "\r\n" + `{"x":1}` + "\n", "", "tail"}})

	line, err := lr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, `{"node":"A"}`, string(line))

	line, err = lr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(line))

	_, err = lr.ReadLine()
	assert.ErrorIs(t, err, ErrTimeout)

	line, err = lr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "tail", string(line))

	_, err = lr.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReaderDropsOversizedGarbage(t *testing.T) {
	const garbage = 5000
	lr := NewLineReader(strings.NewReader(strings.Repeat("x", garbage) + "\n" + "ok\n"))

	line, err := lr.ReadLine()
	require.NoError(t, err)
	assert.Less(t, len(line), garbage)

	for err == nil && string(line) != "ok" {
		line, err = lr.ReadLine()
	}
	require.NoError(t, err)
	assert.Equal(t, "ok", string(line))
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"node\":\"A\"}\n{\"node\":\"B\"}\n"), 0644))

	src, err := OpenFile(path)
	require.NoError(t, err)
	defer src.Close()

	var got []string
	for {
		line, err := src.ReadLine()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, string(line))
	}
	assert.Equal(t, []string{`{"node":"A"}`, `{"node":"B"}`}, got)

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
