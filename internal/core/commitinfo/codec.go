package commitinfo

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"time"
)

// ErrCommitMismatch is returned by Decode when the data was written for a
// different commit than the one requested.
var ErrCommitMismatch = errors.New("cache commit id mismatch")

// maxStringLen bounds a single decoded string
const maxStringLen = 1 << 20

// Encode writes the available entries of a cache computed against commitID.
// Entries are written in path order and the entry count is backpatched once
// they are all out.
func Encode(w io.Writer, commitID string, entries map[string]Info) error {
	paths := make([]string, 0, len(entries))
	for p, info := range entries {
		if info.Available {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	if len(paths) > math.MaxInt32 {
		return fmt.Errorf("too many entries: %d", len(paths))
	}

	buf := appendString(nil, commitID)
	countAt := len(buf)
	buf = binary.LittleEndian.AppendUint32(buf, 0)

	var count int32
	for _, p := range paths {
		info := entries[p]
		buf = appendString(buf, p)
		buf = append(buf, 1)
		buf = appendString(buf, info.Author)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(info.Timestamp.UnixNano()))
		buf = appendString(buf, info.Message)
		count++
	}
	binary.LittleEndian.PutUint32(buf[countAt:], uint32(count))

	_, err := w.Write(buf)
	return err
}

// Decode reads data written by Encode. It returns ErrCommitMismatch without
// reading any entry when the stored commit id differs from commitID.
func Decode(r io.Reader, commitID string) (map[string]Info, error) {
	br := bufio.NewReader(r)

	stored, err := readString(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit id: %w", err)
	}
	if stored != commitID {
		return nil, fmt.Errorf("%w: stored %q, current %q", ErrCommitMismatch, stored, commitID)
	}

	var count int32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("failed to read entry count: %w", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("invalid entry count %d", count)
	}

	entries := make(map[string]Info, min(int(count), 1024))
	for i := int32(0); i < count; i++ {
		path, info, err := readEntry(br)
		if err != nil {
			return nil, fmt.Errorf("failed to read entry %d: %w", i, err)
		}
		if info.Available {
			entries[path] = info
		}
	}
	return entries, nil
}

func readEntry(br *bufio.Reader) (string, Info, error) {
	path, err := readString(br)
	if err != nil {
		return "", Info{}, err
	}
	flag, err := br.ReadByte()
	if err != nil {
		return "", Info{}, unexpected(err)
	}
	if flag == 0 {
		return path, Info{}, nil
	}

	author, err := readString(br)
	if err != nil {
		return "", Info{}, err
	}
	var nanos int64
	if err := binary.Read(br, binary.LittleEndian, &nanos); err != nil {
		return "", Info{}, unexpected(err)
	}
	message, err := readString(br)
	if err != nil {
		return "", Info{}, err
	}

	return path, Info{
		Author:    author,
		Timestamp: time.Unix(0, nanos),
		Message:   message,
		Available: true,
	}, nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func readString(br *bufio.Reader) (string, error) {
	n, err := binary.ReadUvarint(br)
	if err != nil {
		return "", unexpected(err)
	}
	if n > maxStringLen {
		return "", fmt.Errorf("string length %d exceeds limit", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(br, b); err != nil {
		return "", unexpected(err)
	}
	return string(b), nil
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
