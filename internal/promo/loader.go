package promo

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const initialSetCapacity = 1 << 16

// readCodes parses a gzip stream with one code per line. Blank lines and
// surrounding whitespace are ignored.
func readCodes(ctx context.Context, r io.Reader) (*mapCodeSet, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	set := newMapCodeSet(initialSetCapacity)

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for n := 0; scanner.Scan(); n++ {
		if n%100_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			set.add(line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read codes: %w", err)
	}

	return set, nil
}

type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader reads code lists from the local file system.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "promo-file-loader").Logger(),
	}
}

func (l *fileLoader) Load(ctx context.Context, path string) (CodeSet, error) {
	f, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open promo file")
		return nil, fmt.Errorf("failed to open promo file %s: %w", path, err)
	}
	defer f.Close()

	set, err := readCodes(ctx, f)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to load promo file")
		return nil, fmt.Errorf("promo file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("codes", set.Size()).
		Msg("promo file loaded")

	return set, nil
}
