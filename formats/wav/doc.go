// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE files on top of github.com/go-audio/wav.
//
// # Decoding
//
// Decoder accepts integer PCM (format tag 1) and WAVE_FORMAT_EXTENSIBLE files
// at 8, 16, 24 or 32 bits, any channel count and any sample rate. Chunks
// before "data" (LIST, JUNK, fact) are skipped. Samples are returned as
// interleaved float32 in [-1,1]:
//
//	src, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//
// Inputs that do not start with a RIFF/WAVE header fail with ErrNotWavFile.
// A file that has the header but is missing the fmt or data chunk fails with
// ErrUnsupportedWavChunks.
//
// # Encoding
//
// PCM16Writer streams float32 frames into 16-bit PCM. The header is written
// when the writer is created and the sizes are patched by Close, so the
// destination must be an io.WriteSeeker. MemFile provides one in memory:
//
//	mem := &wav.MemFile{}
//	pw, _ := wav.NewPCM16Writer(mem, 48000, 1)
//	_ = pw.WriteFloat32(samples)
//	_ = pw.Close()
//	blob := mem.Bytes()
//
// A writer closed without any samples produces a 44 byte header-only file.
// EncodePCM16 is a shortcut for int16 samples that are already in memory.
package wav
