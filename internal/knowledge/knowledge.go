// Package knowledge loads the curated knowledge base from disk. Documents
// are plain markdown files keyed by property slug or geographic area; voice
// examples are a JSON file used to calibrate the drafting agent's tone.
package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Library reads knowledge documents from a directory tree:
//
//	properties/<slug>.md            property info
//	properties/<slug>-<kind>.md     property-scoped docs (e.g. technology)
//	areas/<area>/<kind>.md          area-scoped docs (restaurants, ...)
//	policies.md                     global house rules and policies
//	voice-examples.json             tone calibration examples
type Library struct {
	root string
}

// NewLibrary creates a library rooted at dir.
func NewLibrary(dir string) *Library {
	return &Library{root: dir}
}

// PropertyDoc returns a property-scoped document. An empty kind returns the
// main property info document.
func (l *Library) PropertyDoc(slug, kind string) (string, error) {
	name := slug + ".md"
	if kind != "" {
		name = slug + "-" + kind + ".md"
	}
	return l.read(filepath.Join("properties", name))
}

// AreaDoc returns an area-scoped document.
func (l *Library) AreaDoc(area, kind string) (string, error) {
	return l.read(filepath.Join("areas", area, kind+".md"))
}

// PolicyDoc returns the global policy document.
func (l *Library) PolicyDoc() (string, error) {
	return l.read("policies.md")
}

// VoiceExample is one calibration example showing how the host writes.
type VoiceExample struct {
	Category     string `json:"category"`
	GuestMessage string `json:"guest_message"`
	Response     string `json:"response"`
}

// VoiceExamples loads and formats the voice-calibration examples for the
// system prompt. A missing or malformed file yields an empty block; the
// drafting agent works without examples, just with less of the host's voice.
func (l *Library) VoiceExamples() string {
	raw, err := os.ReadFile(filepath.Join(l.root, "voice-examples.json"))
	if err != nil {
		return ""
	}

	var examples []VoiceExample
	if err := json.Unmarshal(raw, &examples); err != nil {
		return ""
	}

	blocks := make([]string, 0, len(examples))
	for _, ex := range examples {
		blocks = append(blocks, fmt.Sprintf("[%s]\nGuest: %s\nCindy: %s",
			ex.Category, ex.GuestMessage, ex.Response))
	}
	return strings.Join(blocks, "\n\n")
}

func (l *Library) read(rel string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(l.root, rel))
	if err != nil {
		return "", fmt.Errorf("read knowledge doc %s: %w", rel, err)
	}
	return string(raw), nil
}
