package commitinfo

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() map[string]Info {
	return map[string]Info{
		"/proj/a.txt": {
			Author:    "Jane",
			Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 123, time.UTC),
			Message:   "add a",
			Available: true,
		},
		"/proj/dir/ü.png": {
			Author:    "Ólafur",
			Timestamp: time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
			Message:   "",
			Available: true,
		},
		"/proj/missing.txt": {},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "abc1234", sampleEntries()))

	got, err := Decode(&buf, "abc1234")
	require.NoError(t, err)

	require.Len(t, got, 2, "unavailable entries are not written")
	for path, want := range sampleEntries() {
		if !want.Available {
			assert.NotContains(t, got, path)
			continue
		}
		assert.True(t, want.Equal(got[path]), "entry %s: got %+v", path, got[path])
	}
}

func TestCodec_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "c0ffee", sampleEntries()))
	data := buf.Bytes()

	n, size := binary.Uvarint(data)
	require.Equal(t, uint64(6), n)
	assert.Equal(t, "c0ffee", string(data[size:size+6]))

	count := int32(binary.LittleEndian.Uint32(data[size+6:]))
	assert.Equal(t, int32(2), count, "count is backpatched")
}

func TestCodec_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "abc", nil))

	got, err := Decode(&buf, "abc")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCodec_CommitMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "abc1234", sampleEntries()))

	got, err := Decode(&buf, "def5678")
	assert.True(t, errors.Is(err, ErrCommitMismatch))
	assert.Nil(t, got)
}

func TestCodec_Truncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, "abc1234", sampleEntries()))
	data := buf.Bytes()

	for _, cut := range []int{0, 3, 9, len(data) / 2, len(data) - 1} {
		_, err := Decode(bytes.NewReader(data[:cut]), "abc1234")
		require.Error(t, err, "cut at %d", cut)
		assert.False(t, errors.Is(err, ErrCommitMismatch), "cut at %d", cut)
	}
}

func TestCodec_NegativeCount(t *testing.T) {
	buf := appendString(nil, "abc")
	buf = binary.LittleEndian.AppendUint32(buf, 0xffffffff)

	_, err := Decode(bytes.NewReader(buf), "abc")
	assert.ErrorContains(t, err, "invalid entry count")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestCodec_WriteError(t *testing.T) {
	err := Encode(failingWriter{}, "abc", sampleEntries())
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
