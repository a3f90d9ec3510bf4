// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"io"
)

var errNegativeOffset = errors.New("negative position")

// MemFile is an in-memory io.WriteSeeker. The WAV encoder needs to seek
// back and patch the header sizes once the data length is known.
type MemFile struct {
	data []byte
	pos  int64
}

func (m *MemFile) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		if end > int64(cap(m.data)) {
			grown := make([]byte, end, max(end, 2*int64(cap(m.data))))
			copy(grown, m.data)
			m.data = grown
		} else {
			m.data = m.data[:end]
		}
	}
	copy(m.data[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *MemFile) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = m.pos + offset
	case io.SeekEnd:
		next = int64(len(m.data)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if next < 0 {
		return 0, errNegativeOffset
	}
	m.pos = next
	return next, nil
}

// Bytes returns the written contents. The slice aliases the file.
func (m *MemFile) Bytes() []byte { return m.data }

// Len is the number of bytes written so far.
func (m *MemFile) Len() int { return len(m.data) }
