// Package prompts provides the store of LLM prompt templates.
// Templates are JSON files embedded at compile time; a Store is built once
// and handed to the components that render prompts.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed *.json
var promptFiles embed.FS

// Template keys used by the parsing fallback and the explanation engine
const (
	ExperienceFallback   = "extraction.json#experience-fallback"
	EducationFallback    = "extraction.json#education-fallback"
	CandidateExplanation = "explanation.json#candidate-explanation"
)

// Store holds parsed prompt templates keyed by "file#key"
type Store struct {
	templates map[string]string
}

// New parses every embedded prompt file
func New() (*Store, error) {
	return Load(promptFiles)
}

// MustNew is like New but panics if the embedded files are invalid
func MustNew() *Store {
	s, err := New()
	if err != nil {
		panic(fmt.Sprintf("failed to load prompts: %v", err))
	}
	return s
}

// Load parses every *.json file at the root of fsys
func Load(fsys fs.FS) (*Store, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, err
	}
	s := &Store{templates: make(map[string]string)}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
		}
		var entries map[string]string
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
		}
		base := path.Base(name)
		for key, tmpl := range entries {
			s.templates[base+"#"+key] = tmpl
		}
	}
	return s, nil
}

// Get returns the template stored under id ("file#key")
func (s *Store) Get(id string) (string, error) {
	tmpl, ok := s.templates[id]
	if !ok {
		return "", fmt.Errorf("prompt %q not found", id)
	}
	return tmpl, nil
}

// Render fills the template with data. Placeholders left without a value are an error.
func (s *Store) Render(id string, data map[string]string) (string, error) {
	tmpl, err := s.Get(id)
	if err != nil {
		return "", err
	}
	out := Format(tmpl, data)
	if i := strings.Index(out, "{{."); i >= 0 {
		end := strings.Index(out[i:], "}}")
		if end < 0 {
			end = len(out) - i
		} else {
			end += 2
		}
		return "", fmt.Errorf("prompt %q: missing value for %s", id, out[i:i+end])
	}
	return out, nil
}

// List returns every template id, sorted
func (s *Store) List() []string {
	ids := make([]string, 0, len(s.templates))
	for id := range s.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Format replaces template placeholders in the form {{.Key}} with values from data.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}
