// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"fmt"
	"time"

	"github.com/ik5/audclean/transcode"
)

// Artifact is the final file of a successful run.
type Artifact struct {
	Data      []byte
	Format    transcode.Format
	MIMEType  string
	Filename  string
	CreatedAt time.Time
}

// Filename is audio_clean_<epoch-millis>.<ext>.
func Filename(f transcode.Format, t time.Time) string {
	return fmt.Sprintf("audio_clean_%d.%s", t.UnixMilli(), f.Extension())
}

func newArtifact(out *transcode.Output, now time.Time) *Artifact {
	return &Artifact{
		Data:      out.Data,
		Format:    out.Format,
		MIMEType:  out.MIMEType,
		Filename:  Filename(out.Format, now),
		CreatedAt: now,
	}
}
