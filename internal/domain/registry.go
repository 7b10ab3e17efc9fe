// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// RegistryFile is the name of the registry document at the repository root.
const RegistryFile = "games.json"

// Registry is the repository-wide listing of all games.
// The order of Games is preserved on write.
type Registry struct {
	Games []Game `json:"games"`

	// Keys lists the document's top-level keys in order; nil when built in code.
	Keys []string `json:"-"`

	// Extra holds top-level keys this package does not model.
	Extra map[string]json.RawMessage `json:"-"`
}

// Game is a single entry of the registry.
type Game struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Path        string   `json:"path"`
	CreatedWith string   `json:"createdWith"`
	Model       string   `json:"model"`
	PRLinks     []string `json:"prLinks"`
	PRCount     *int     `json:"prCount,omitempty"`

	// Keys lists the entry's keys in document order; nil when built in code.
	// Modeled keys the entry lacked are only written once they hold a value.
	Keys []string `json:"-"`

	// Extra holds keys of the entry this package does not model.
	Extra map[string]json.RawMessage `json:"-"`
}

var (
	registryKeys = []string{"games"}
	gameKeys     = []string{"id", "name", "description", "status", "path", "createdWith", "model", "prLinks", "prCount"}
)

// Find returns the game with the given id, or nil.
func (r *Registry) Find(id string) *Game {
	for i := range r.Games {
		if r.Games[i].ID == id {
			return &r.Games[i]
		}
	}
	return nil
}

// SyncPRCount sets prCount of the game with the given id.
// It reports false when the game is not listed.
func (r *Registry) SyncPRCount(id string, count int) bool {
	game := r.Find(id)
	if game == nil {
		return false
	}
	game.PRCount = &count
	return true
}

// URLPrefix normalizes the game's path into a URL path prefix without a
// trailing slash: "./games/x" and "games/x" both become "/games/x".
func (g Game) URLPrefix() string {
	p := strings.ReplaceAll(g.Path, `\`, "/")
	switch {
	case strings.HasPrefix(p, "./"):
		p = p[1:]
	case !strings.HasPrefix(p, "/"):
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}

type registryFields Registry

func (r *Registry) UnmarshalJSON(data []byte) error {
	var fields registryFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	keys, extra, err := splitObject(data, registryKeys)
	if err != nil {
		return err
	}
	fields.Keys, fields.Extra = keys, extra
	*r = Registry(fields)
	return nil
}

func (r Registry) MarshalJSON() ([]byte, error) {
	games := r.Games
	if games == nil && r.Keys == nil {
		games = []Game{}
	}
	return encodeObject(r.Keys, []field{
		{"games", games, len(games) == 0},
	}, r.Extra)
}

type gameFields Game

func (g *Game) UnmarshalJSON(data []byte) error {
	var fields gameFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	keys, extra, err := splitObject(data, gameKeys)
	if err != nil {
		return err
	}
	fields.Keys, fields.Extra = keys, extra
	*g = Game(fields)
	return nil
}

func (g Game) MarshalJSON() ([]byte, error) {
	links := g.PRLinks
	if links == nil && g.Keys == nil {
		links = []string{}
	}
	fields := []field{
		{"id", g.ID, g.ID == ""},
		{"name", g.Name, g.Name == ""},
		{"description", g.Description, g.Description == ""},
		{"status", g.Status, g.Status == ""},
		{"path", g.Path, g.Path == ""},
		{"createdWith", g.CreatedWith, g.CreatedWith == ""},
		{"model", g.Model, g.Model == ""},
		{"prLinks", links, len(links) == 0},
	}
	if g.PRCount != nil {
		fields = append(fields, field{"prCount", *g.PRCount, false})
	}
	return encodeObject(g.Keys, fields, g.Extra)
}

// splitObject returns the keys of the JSON object in data in document order,
// and the values of the keys that are not known.
func splitObject(data []byte, known []string) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	keys := []string{}
	var extra map[string]json.RawMessage
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
		if slices.Contains(known, key) {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[key] = value
	}
	return keys, extra, nil
}

// field is a modeled key of an object. A zero field is left out when the
// object was decoded without it.
type field struct {
	key   string
	value any
	zero  bool
}

// encodeObject writes the object's keys in document order, followed by
// modeled keys the document lacked and then new extra keys in sorted order.
// A nil order means the object was built in code and every field is written.
func encodeObject(order []string, fields []field, extra map[string]json.RawMessage) ([]byte, error) {
	values := make(map[string]json.RawMessage, len(fields)+len(extra))
	for key, raw := range extra {
		values[key] = raw
	}
	var modeled []string
	for _, f := range fields {
		if order != nil && f.zero && !slices.Contains(order, f.key) {
			continue
		}
		raw, err := marshalNoEscape(f.value)
		if err != nil {
			return nil, err
		}
		values[f.key] = raw
		modeled = append(modeled, f.key)
	}

	keys := make([]string, 0, len(values))
	for _, key := range order {
		if _, ok := values[key]; ok {
			keys = append(keys, key)
		}
	}
	for _, key := range modeled {
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	var rest []string
	for key := range extra {
		if !slices.Contains(keys, key) {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		name, err := marshalNoEscape(key)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
