package source

import (
	"bytes"
	"errors"
	"io"
)

// ErrTimeout за время ожидания не пришло ни одной полной строки
var ErrTimeout = errors.New("read timeout")

const maxLineSize = 4096

// LineReader собирает строки из потока байт.
// Read, вернувший 0 байт без ошибки, считается истекшим таймаутом.
type LineReader struct {
	r   io.Reader
	buf []byte
	tmp []byte
}

// NewLineReader создает LineReader поверх r
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: r, tmp: make([]byte, 256)}
}

// ReadLine возвращает очередную строку без перевода строки.
// ErrTimeout означает, что данных пока нет; io.EOF конец потока.
func (l *LineReader) ReadLine() ([]byte, error) {
	for {
		if line, ok := l.pop(); ok {
			return line, nil
		}

		n, err := l.r.Read(l.tmp)
		if n > 0 {
			l.buf = append(l.buf, l.tmp[:n]...)
			if len(l.buf) > maxLineSize && bytes.IndexByte(l.buf, '\n') < 0 {
				// мусор без перевода строки отбрасываем
				l.buf = l.buf[:0]
			}
			continue
		}

		switch {
		case err == io.EOF:
			if len(l.buf) > 0 {
				line := bytes.TrimRight(l.buf, "\r")
				l.buf = nil
				return line, nil
			}
			return nil, io.EOF
		case err != nil:
			return nil, err
		default:
			return nil, ErrTimeout
		}
	}
}

func (l *LineReader) pop() ([]byte, bool) {
	i := bytes.IndexByte(l.buf, '\n')
	if i < 0 {
		return nil, false
	}
	line := make([]byte, i)
	copy(line, l.buf[:i])
	l.buf = l.buf[i+1:]
	return bytes.TrimRight(line, "\r"), true
}
