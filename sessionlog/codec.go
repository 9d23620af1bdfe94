// Package sessionlog persists completed wellness check-ins as an append-only
// JSON document.
package sessionlog

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// CurrentVersion is the document layout written by Encode.
const CurrentVersion = 1

// ErrUnsupportedVersion is returned when a document was written by a newer
// layout than this build understands.
var ErrUnsupportedVersion = errors.New("sessionlog: unsupported document version")

// Entry is one finalized check-in as stored on disk.
type Entry struct {
	Mood       string   `json:"mood"`
	Energy     string   `json:"energy"`
	Objectives []string `json:"objectives"`
	Summary    string   `json:"summary"`
	Timestamp  string   `json:"timestamp"`
}

// Document is the whole log file.
//
//	{"version": 1, "sessions": [{"mood": ..., "energy": ..., "objectives": [...], "summary": ..., "timestamp": ...}]}
type Document struct {
	Version  int     `json:"version"`
	Sessions []Entry `json:"sessions"`
}

// wireDocument tolerates a missing version (files written before versioning)
// and a null sessions array.
type wireDocument struct {
	Version  *int    `json:"version,omitempty"`
	Sessions []Entry `json:"sessions"`
}

// Encode renders doc in the current layout.
func Encode(doc Document) ([]byte, error) {
	v := CurrentVersion
	wire := wireDocument{Version: &v, Sessions: make([]Entry, len(doc.Sessions))}
	copy(wire.Sessions, doc.Sessions)
	for i := range wire.Sessions {
		if wire.Sessions[i].Objectives == nil {
			wire.Sessions[i].Objectives = []string{}
		}
	}
	data, err := sonic.ConfigStd.MarshalIndent(wire, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sessionlog: encode: %w", err)
	}
	return data, nil
}

// Decode parses a log document. Unknown fields are ignored; a missing version
// means version 1.
func Decode(data []byte) (Document, error) {
	var wire wireDocument
	if err := sonic.ConfigStd.Unmarshal(data, &wire); err != nil {
		return Document{}, fmt.Errorf("sessionlog: decode: %w", err)
	}

	version := CurrentVersion
	if wire.Version != nil {
		version = *wire.Version
	}
	if version < 1 {
		return Document{}, fmt.Errorf("sessionlog: decode: invalid version %d", version)
	}
	if version > CurrentVersion {
		return Document{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	return Document{Version: version, Sessions: wire.Sessions}, nil
}
