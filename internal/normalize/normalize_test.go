package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesDropsEmptyAndCorrupt(t *testing.T) {
	input := "  first line  \n\n\t\nsec\x00ond\r\nthird\n"

	res, err := Lines(strings.NewReader(input), "run.txt")
	require.NoError(t, err)

	require.Len(t, res.Lines, 2)
	assert.Equal(t, "first line", res.Lines[0].Text)
	assert.Equal(t, 1, res.Lines[0].Number)
	assert.Equal(t, "third", res.Lines[1].Text)
	assert.Equal(t, 5, res.Lines[1].Number)
	assert.Equal(t, "run.txt", res.Lines[1].Source)

	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 3, res.Dropped)
}

func TestLinesNoTrailingNewline(t *testing.T) {
	res, err := Lines(strings.NewReader("a\nb"), "x")
	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, "b", res.Lines[1].Text)
	assert.Zero(t, res.Dropped)
}

func TestLinesEmptyInput(t *testing.T) {
	res, err := Lines(strings.NewReader(""), "x")
	require.NoError(t, err)
	assert.Empty(t, res.Lines)
	assert.Zero(t, res.Total)
}

func TestLinesLongLine(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	res, err := Lines(strings.NewReader(long+"\n"), "x")
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Len(t, res.Lines[0].Text, len(long))
}

func TestLinesDropsOversizedLine(t *testing.T) {
	input := "before\n" + strings.Repeat("y", 40) + "\n" + strings.Repeat("z", 16) + "\nafter"

	res, err := lines(strings.NewReader(input), "x", 16)
	require.NoError(t, err)

	require.Len(t, res.Lines, 3)
	assert.Equal(t, "before", res.Lines[0].Text)
	assert.Equal(t, strings.Repeat("z", 16), res.Lines[1].Text, "a line at the limit is kept")
	assert.Equal(t, 3, res.Lines[1].Number)
	assert.Equal(t, "after", res.Lines[2].Text)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 1, res.Dropped)
}

func TestLinesOversizedLineAcrossBuffer(t *testing.T) {
	// larger than both the reader buffer and the real limit
	huge := strings.Repeat("o", maxLineSize+1)
	input := "function=f start\n" + huge + "\nfunction=f end\n"

	res, err := Lines(strings.NewReader(input), "run.txt")
	require.NoError(t, err)

	require.Len(t, res.Lines, 2)
	assert.Equal(t, "function=f start", res.Lines[0].Text)
	assert.Equal(t, "function=f end", res.Lines[1].Text)
	assert.Equal(t, 3, res.Lines[1].Number)
	assert.Equal(t, 1, res.Dropped)
}
