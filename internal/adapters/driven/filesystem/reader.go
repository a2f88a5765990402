package filesystem

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/seek/internal/core/domain"
	"github.com/custodia-labs/seek/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.ContentReader = (*Reader)(nil)

// Reader decodes files as UTF-8, or as UTF-16 when a byte order mark says so.
// Invalid sequences decode to U+FFFD instead of failing the read.
type Reader struct{}

// NewReader creates a best-effort text reader.
func NewReader() *Reader {
	return &Reader{}
}

func decoder() transform.Transformer {
	return unicode.BOMOverride(unicode.UTF8.NewDecoder())
}

// ReadFile returns the decoded content of path.
func (r *Reader) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	decoded, _, err := transform.Bytes(decoder(), data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return string(decoded), nil
}

// ScanLines calls fn for every line of path, numbered from 1.
// "\n", "\r\n" and a lone "\r" terminate lines; a final line without
// terminator is still reported.
func (r *Reader) ScanLines(path string, fn func(line int, text string) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	br := bufio.NewReader(transform.NewReader(f, decoder()))
	n := 0
	for {
		chunk, err := br.ReadString('\n')
		if chunk != "" {
			for _, text := range domain.SplitLines(chunk) {
				n++
				if !fn(n, text) {
					return nil
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read %s: %w", path, err)
		}
	}
}
