// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ik5/audclean/pipeline"
)

// FilePublisher saves artifacts under Dir using their generated name.
type FilePublisher struct {
	Dir string
}

func (p *FilePublisher) Publish(a *pipeline.Artifact) (pipeline.Link, error) {
	dir := p.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return pipeline.Link{}, fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, a.Filename)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return pipeline.Link{}, fmt.Errorf("write %s: %w", a.Filename, err)
	}

	return pipeline.Link{URL: path, Filename: a.Filename, MIMEType: a.MIMEType}, nil
}
