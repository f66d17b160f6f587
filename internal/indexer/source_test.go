package indexer

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, src RecordSource) []Record {
	t.Helper()
	var out []Record
	for {
		rec, err := src.Next(context.Background())
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource(
		Record{ExternalID: "a"},
		Record{ExternalID: "b"},
	)
	records := drain(t, src)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ExternalID)
	assert.Equal(t, "b", records[1].ExternalID)

	// Exhausted sources stay exhausted.
	_, err := src.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestLineSourceParsesFields(t *testing.T) {
	input := "t1~alice~side effects of the vaccine\n" +
		"t2~bob~side effects of malaria vaccine\n"
	src := NewLineSource(strings.NewReader(input), "~", DefaultLineLayout())

	records := drain(t, src)
	require.Len(t, records, 2)
	assert.Equal(t, Record{ExternalID: "t1", Author: "alice", Text: "side effects of the vaccine"}, records[0])
	assert.Equal(t, Record{ExternalID: "t2", Author: "bob", Text: "side effects of malaria vaccine"}, records[1])
}

func TestLineSourceShortLines(t *testing.T) {
	// A line missing the text field resolves to empty text, which the
	// builder later skips; it is not a parse error.
	src := NewLineSource(strings.NewReader("t1~alice\n"), "~", DefaultLineLayout())
	records := drain(t, src)
	require.Len(t, records, 1)
	assert.Equal(t, "t1", records[0].ExternalID)
	assert.Equal(t, "", records[0].Text)
}

func TestLineSourceCustomSeparator(t *testing.T) {
	src := NewLineSource(strings.NewReader("t1|carol|hello\n"), "|", DefaultLineLayout())
	records := drain(t, src)
	require.Len(t, records, 1)
	assert.Equal(t, "hello", records[0].Text)
}

func TestLineSourceEmptyInput(t *testing.T) {
	src := NewLineSource(strings.NewReader(""), "~", DefaultLineLayout())
	_, err := src.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestLineSourceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := NewLineSource(strings.NewReader("t1~a~b\n"), "~", DefaultLineLayout())
	_, err := src.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
