// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio with github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit stereo, so the returned Source reports two
// channels even for mono files; the decode stage downmixes as needed.
// Reads are whole frames and the last read returns (n, io.EOF).
//
//	src, err := mp3.Decoder{}.Decode(bytes.NewReader(data))
//	if errors.Is(err, mp3.ErrNotMP3File) {
//	    // not an MP3 stream
//	}
package mp3
