// Package indexer builds index snapshots from record sources. A build is a
// strict single-pass pull loop: one record at a time, no concurrent
// mutation, run to completion before the snapshot serves any query.
package indexer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one corpus record as consumed by the builder. Author is
// carried for callers that want it but is irrelevant to indexing.
type Record struct {
	ExternalID string `json:"external_id"`
	Author     string `json:"author"`
	Text       string `json:"text"`
}

// RecordSource is a finite, forward-only, single-pass stream of records.
// Next returns io.EOF after the last record.
type RecordSource interface {
	Next(ctx context.Context) (Record, error)
}

// SliceSource serves records from memory.
type SliceSource struct {
	records []Record
	pos     int
}

// NewSliceSource creates a SliceSource over the given records.
func NewSliceSource(records ...Record) *SliceSource {
	return &SliceSource{records: records}
}

// Next implements RecordSource.
func (s *SliceSource) Next(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if s.pos >= len(s.records) {
		return Record{}, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

// LineLayout names the zero-based field positions inside one line of a
// flat file export.
type LineLayout struct {
	ExternalID int
	Author     int
	Text       int
}

// DefaultLineLayout matches the corpus export this service was built for:
// id, author, text.
func DefaultLineLayout() LineLayout {
	return LineLayout{ExternalID: 0, Author: 1, Text: 2}
}

// LineSource reads one record per line from a delimited flat file export.
// Separator and layout are explicit configuration rather than package
// constants.
type LineSource struct {
	scanner *bufio.Scanner
	closer  io.Closer
	sep     string
	layout  LineLayout
}

// NewLineSource creates a LineSource over r.
func NewLineSource(r io.Reader, sep string, layout LineLayout) *LineSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &LineSource{scanner: sc, sep: sep, layout: layout}
}

// NewFileSource opens path and returns a LineSource that closes the file
// once the stream is exhausted.
func NewFileSource(path, sep string, layout LineLayout) (*LineSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus file: %w", err)
	}
	src := NewLineSource(f, sep, layout)
	src.closer = f
	return src, nil
}

// Next implements RecordSource.
func (l *LineSource) Next(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		l.close()
		return Record{}, err
	}
	if !l.scanner.Scan() {
		defer l.close()
		if err := l.scanner.Err(); err != nil {
			return Record{}, err
		}
		return Record{}, io.EOF
	}
	fields := strings.Split(l.scanner.Text(), l.sep)
	return Record{
		ExternalID: fieldAt(fields, l.layout.ExternalID),
		Author:     fieldAt(fields, l.layout.Author),
		Text:       fieldAt(fields, l.layout.Text),
	}, nil
}

func (l *LineSource) close() {
	if l.closer != nil {
		l.closer.Close()
		l.closer = nil
	}
}

// fieldAt tolerates short lines: a missing field resolves to "", which the
// builder treats as an empty-text skip.
func fieldAt(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}
