// SPDX-License-Identifier: EPL-2.0

package decode

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Native format keys, as registered in the decoder registry.
const (
	FormatWAV  = "wav"
	FormatMP3  = "mp3"
	FormatOgg  = "ogg"
	FormatAIFF = "aiff"
)

var mimeFormats = []struct {
	mime string
	key  string
}{
	{"audio/wav", FormatWAV},
	{"audio/mpeg", FormatMP3},
	{"audio/ogg", FormatOgg},
	{"audio/aiff", FormatAIFF},
}

var extFormats = map[string]string{
	".wav":  FormatWAV,
	".wave": FormatWAV,
	".mp3":  FormatMP3,
	".ogg":  FormatOgg,
	".oga":  FormatOgg,
	".aif":  FormatAIFF,
	".aiff": FormatAIFF,
}

// formatOfMIME walks m and its parents looking for a natively decoded type.
func formatOfMIME(m *mimetype.MIME) string {
	for ; m != nil; m = m.Parent() {
		for _, f := range mimeFormats {
			if m.Is(f.mime) {
				return f.key
			}
		}
	}
	return ""
}

func formatOfContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return formatOfMIME(mimetype.Lookup(mt))
}

func formatOfName(name string) string {
	return extFormats[strings.ToLower(filepath.Ext(name))]
}

// Detection is the outcome of format selection for one input.
type Detection struct {
	Key  string // native decoder key, empty when only ffmpeg can help
	MIME string // sniffed MIME type
	By   string // "content", "content-type", "extension" or ""
}

// Detect picks a decoder for in. The bytes win over the declared content
// type, which wins over the file extension.
func Detect(in Input) Detection {
	sniffed := mimetype.Detect(in.Data)
	d := Detection{MIME: sniffed.String()}

	d.Key, d.By = formatOfMIME(sniffed), "content"
	if d.Key == "" {
		d.Key, d.By = formatOfContentType(in.ContentType), "content-type"
	}
	if d.Key == "" {
		d.Key, d.By = formatOfName(in.Name), "extension"
	}
	if d.Key == "" {
		d.By = ""
	}
	return d
}
