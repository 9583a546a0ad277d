// Package normalize cleans raw log text before classification.
package normalize

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/OpenFogStack/enoki/internal/model"
)

// maxLineSize bounds a single line; debug payloads can carry whole request bodies.
const maxLineSize = 16 << 20

// Result is the cleaned content of one file.
type Result struct {
	Lines   []model.RawLine
	Total   int // lines read, including dropped ones
	Dropped int // empty after trimming, containing NUL bytes, or oversized
}

// Lines reads r line by line, trims surrounding whitespace and drops lines
// that are empty, contain embedded NUL bytes or exceed the line size limit.
// Order is preserved. Only read errors from r are returned.
func Lines(r io.Reader, source string) (Result, error) {
	return lines(r, source, maxLineSize)
}

func lines(r io.Reader, source string, limit int) (Result, error) {
	var res Result
	br := bufio.NewReaderSize(r, 64*1024)

	for {
		raw, oversize, err := readLine(br, limit)
		if len(raw) > 0 || oversize {
			res.Total++

			line := strings.TrimSpace(string(raw))
			switch {
			case oversize, line == "", strings.ContainsRune(line, 0):
				res.Dropped++
			default:
				res.Lines = append(res.Lines, model.RawLine{
					Text:   line,
					Source: source,
					Number: res.Total,
				})
			}
		}

		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, err
		}
	}
}

// readLine returns the next line including its newline. A line longer than
// limit is consumed to its end and reported as oversize with no content.
func readLine(br *bufio.Reader, limit int) ([]byte, bool, error) {
	var line []byte
	oversize := false
	for {
		chunk, err := br.ReadSlice('\n')
		if !oversize {
			if len(line)+len(bytes.TrimSuffix(chunk, []byte("\n"))) > limit {
				oversize = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return line, oversize, err
		}
	}
}
