package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readIDs(t *testing.T, f *FileReader) []int {
	t.Helper()
	var ids []int
	for {
		event, err := f.getNextEvent()
		if err == io.EOF {
			return ids
		}
		require.NoError(t, err)
		ids = append(ids, event.EventID)
	}
}

func TestFileReaderReadsAll(t *testing.T) {
	f := NewFileReader(bytes.NewReader(stepDump(t, 5, 3)), testConfiguration(), nil)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, readIDs(t, f))
}

func TestFileReaderSkipAndMaxEvents(t *testing.T) {
	config := testConfiguration()
	config.Skip = 2
	config.MaxEvents = 2
	f := NewFileReader(bytes.NewReader(stepDump(t, 6, 3)), config, nil)
	assert.Equal(t, []int{2, 3}, readIDs(t, f))
}

func TestFileReaderSkipPastEnd(t *testing.T) {
	config := testConfiguration()
	config.Skip = 10
	f := NewFileReader(bytes.NewReader(stepDump(t, 3, 1)), config, nil)
	assert.Empty(t, readIDs(t, f))
}

func TestFileReaderBadRecord(t *testing.T) {
	f := NewFileReader(bytes.NewReader([]byte("H,0,pmt,not-a-copy,-22,2.5,0,0,0,0\n")), testConfiguration(), nil)
	_, err := f.getNextEvent()
	assert.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}
