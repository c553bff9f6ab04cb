// Package prompts holds the LLM prompt templates used for resume import and
// profile suggestions. Templates live in JSON files embedded at compile time,
// keyed by name.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ProfileFile holds the resume import and suggestion prompts.
const ProfileFile = "profile.json"

//go:embed *.json
var files embed.FS

var loaded sync.Map // file name -> Set

// Set is the parsed contents of one prompt file.
type Set map[string]string

// Load parses an embedded prompt file. Parsed files are kept for the life of
// the process.
func Load(name string) (Set, error) {
	if set, ok := loaded.Load(name); ok {
		return set.(Set), nil
	}
	raw, err := files.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("prompt file %s: %w", name, err)
	}
	var set Set
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("prompt file %s: %w", name, err)
	}
	actual, _ := loaded.LoadOrStore(name, set)
	return actual.(Set), nil
}

// Get returns the prompt under key.
func (s Set) Get(key string) (string, error) {
	p, ok := s[key]
	if !ok {
		return "", fmt.Errorf("no prompt %q", key)
	}
	return p, nil
}

// Keys returns the prompt names in sorted order.
func (s Set) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// Must returns a prompt the program cannot run without and panics if it is missing.
func Must(file, key string) string {
	set, err := Load(file)
	if err != nil {
		panic(err)
	}
	p, err := set.Get(key)
	if err != nil {
		panic(fmt.Errorf("%s: %w", file, err))
	}
	return p
}

// Render substitutes {{.Name}} placeholders from vars in a single pass.
// Placeholders without a value stay in the output.
func Render(tmpl string, vars map[string]string) string {
	oldnew := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		oldnew = append(oldnew, "{{."+k+"}}", v)
	}
	return strings.NewReplacer(oldnew...).Replace(tmpl)
}
