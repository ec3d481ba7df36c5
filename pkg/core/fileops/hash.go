package fileops

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	coreErrors "github.com/angelospk/osdbclient/pkg/core/errors"
)

const (
	// osdbHashChunkSize is the size of the chunk read from the start and end of the file.
	osdbHashChunkSize = 65536 // 64 * 1024
)

// OSDbHasher computes the OpenSubtitles movie hash of local video files.
type OSDbHasher struct{}

// Hash implements the hashing collaborator used by the subtitle client.
func (OSDbHasher) Hash(filePath string) (string, int64, error) {
	return CalculateOSDbHash(filePath)
}

// checksumBuffer calculates the sum of 64-bit little-endian integers in the buffer.
func checksumBuffer(buf []byte) (sum uint64) {
	for i := 0; i+8 <= len(buf); i += 8 {
		sum += binary.LittleEndian.Uint64(buf[i : i+8])
	}
	return
}

// CalculateOSDbHash calculates the OpenSubtitles Movie Hash for a given video file.
// Based on the algorithm described at: http://trac.opensubtitles.org/projects/opensubtitles/wiki/HashSourceCodes
// The hash is the file size plus the 64-bit word sums of the first and last 64KiB,
// formatted as 16 lowercase hex digits.
func CalculateOSDbHash(filePath string) (hash string, byteSize int64, err error) {
	file, err := os.Open(filePath)
	if err != nil {
		err = fmt.Errorf("failed to open file for OSDb hashing '%s': %w", filePath, err)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		err = fmt.Errorf("failed to stat file '%s': %w", filePath, err)
		return
	}

	byteSize = stat.Size()
	if byteSize < osdbHashChunkSize {
		err = fmt.Errorf("%w: '%s' (size: %d)", coreErrors.ErrFileTooSmall, filePath, byteSize)
		return
	}

	buf := make([]byte, osdbHashChunkSize)
	if _, err = io.ReadFull(file, buf); err != nil {
		err = fmt.Errorf("failed to read start chunk from '%s': %w", filePath, err)
		return
	}
	startChecksum := checksumBuffer(buf)

	if _, err = file.ReadAt(buf, byteSize-osdbHashChunkSize); err != nil && err != io.EOF {
		err = fmt.Errorf("failed to read end chunk from '%s': %w", filePath, err)
		return
	}
	err = nil
	endChecksum := checksumBuffer(buf)

	// Overflow is part of the algorithm.
	finalHash := uint64(byteSize) + startChecksum + endChecksum

	hash = fmt.Sprintf("%016x", finalHash)
	return
}
