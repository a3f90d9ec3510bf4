// SPDX-License-Identifier: EPL-2.0

package pipeline

import "fmt"

// Class is the state class a display styles a status with.
type Class string

const (
	ClassLoading Class = "loading"
	ClassSuccess Class = "success"
	ClassError   Class = "error"
)

// Status texts.
const (
	TextLoading   = "Loading file..."
	TextFiltering = "Reducing noise..."
	TextSuccess   = "Processing completed successfully!"
	TextNoInput   = "Please choose an audio file"
	errorLabel    = "Error: "
)

type Status struct {
	Text  string `json:"text"`
	Class Class  `json:"class"`
}

// StatusOf is the status shown on entering s. Idle shows nothing.
func StatusOf(s State) (Status, bool) {
	switch st := s.(type) {
	case Loading:
		return Status{Text: TextLoading, Class: ClassLoading}, true
	case Filtering:
		return Status{Text: TextFiltering, Class: ClassLoading}, true
	case Converting:
		return Status{Text: fmt.Sprintf("Converting to %s...", st.Format), Class: ClassLoading}, true
	case Succeeded:
		return Status{Text: TextSuccess, Class: ClassSuccess}, true
	case Failed:
		return ErrorStatus(st.Err), true
	default:
		return Status{}, false
	}
}

// ErrorStatus surfaces err verbatim behind the fixed label.
func ErrorStatus(err error) Status {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Status{Text: errorLabel + msg, Class: ClassError}
}

// Link is a temporary reference to a published artifact.
type Link struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	MIMEType string `json:"mimeType"`
}

// Display is whatever shows progress to the user.
type Display interface {
	SetStatus(Status)
	SetTriggerEnabled(bool)
	ShowArtifact(Link)
	HideArtifact()
}

// Publisher turns an artifact into a downloadable link.
type Publisher interface {
	Publish(*Artifact) (Link, error)
}

type nopDisplay struct{}

func (nopDisplay) SetStatus(Status)       {}
func (nopDisplay) SetTriggerEnabled(bool) {}
func (nopDisplay) ShowArtifact(Link)      {}
func (nopDisplay) HideArtifact()          {}
