// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/ik5/audclean/pipeline"
)

// TerminalDisplay prints pipeline status changes as lines on w.
type TerminalDisplay struct {
	mu     sync.Mutex
	w      io.Writer
	styles Styles
	last   pipeline.Status
}

func NewTerminalDisplay(w io.Writer) *TerminalDisplay {
	return &TerminalDisplay{w: w, styles: NewStyles(w)}
}

// SetStatus prints s unless it repeats the previous line.
func (d *TerminalDisplay) SetStatus(s pipeline.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s == d.last {
		return
	}
	d.last = s

	style := d.styles.Loading
	switch s.Class {
	case pipeline.ClassSuccess:
		style = d.styles.Success
	case pipeline.ClassError:
		style = d.styles.Error
	}
	fmt.Fprintln(d.w, style.Render(s.Text))
}

// SetTriggerEnabled is a no-op; a terminal run has no button to grey out.
func (d *TerminalDisplay) SetTriggerEnabled(bool) {}

func (d *TerminalDisplay) ShowArtifact(l pipeline.Link) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fmt.Fprintf(d.w, "%s %s %s\n",
		d.styles.Key.Render("Saved:"),
		d.styles.Value.Render(l.URL),
		d.styles.Key.Render("("+l.MIMEType+")"))
}

func (d *TerminalDisplay) HideArtifact() {}
