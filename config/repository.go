package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// KeyNotFoundError is returned when a dotted key's top-level namespace has
// no configuration file. Missing keys below the top level are not errors;
// they fall back to the caller's default.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("config: namespace %q not found", e.Key)
}

// Repository is the application's configuration store: one top-level
// namespace per file in the config directory, looked up by dotted path.
// It is immutable after Load; lookups walk the decoded tree on every call,
// which is fine for small read-mostly configuration.
type Repository struct {
	items map[string]any
}

// Load builds a Repository from dir: every *.json file contributes one
// top-level namespace named after the file (config/app.json → "app").
// ${VAR} and ${VAR:default} placeholders in string values are expanded from
// the environment at load time.
func Load(dir string) (*Repository, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", dir, err)
	}

	items := make(map[string]any)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		items[name] = expandTree(doc)
	}

	return &Repository{items: items}, nil
}

// NewRepository wraps an already-built tree; used by tests and scaffolding.
func NewRepository(items map[string]any) *Repository {
	if items == nil {
		items = make(map[string]any)
	}
	return &Repository{items: items}
}

// Get looks up a dotted key. The top-level segment must exist — a missing
// namespace is a *KeyNotFoundError regardless of def. Below the top level a
// missing segment (or a non-map intermediate) returns def with a nil error:
// namespace files are required, nested keys are optional.
func (r *Repository) Get(key string, def any) (any, error) {
	segs := strings.Split(key, ".")
	cur, ok := r.items[segs[0]]
	if !ok {
		return nil, &KeyNotFoundError{Key: segs[0]}
	}

	for _, seg := range segs[1:] {
		m, isMap := cur.(map[string]any)
		if !isMap {
			return def, nil
		}
		cur, ok = m[seg]
		if !ok {
			return def, nil
		}
	}
	return cur, nil
}

// MustGet is Get panicking on a missing namespace.
func (r *Repository) MustGet(key string, def any) any {
	v, err := r.Get(key, def)
	if err != nil {
		panic(err)
	}
	return v
}

// Has reports whether the full dotted path exists.
func (r *Repository) Has(key string) bool {
	marker := struct{}{}
	v, err := r.Get(key, marker)
	return err == nil && v != marker
}

// ── Typed accessors ──────────────────────────────────────────────────────────
//
// Conveniences that fall back to def on any miss, including a missing
// namespace. Use Get when the missing-namespace error matters.

// GetString returns the string at key, or def.
func (r *Repository) GetString(key, def string) string {
	v, err := r.Get(key, def)
	if err != nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// GetInt returns the integer at key, or def. JSON numbers and numeric
// strings both count.
func (r *Repository) GetInt(key string, def int) int {
	v, err := r.Get(key, def)
	if err != nil {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

// GetBool returns the boolean at key, or def. "true"/"1" style strings
// parse via strconv.
func (r *Repository) GetBool(key string, def bool) bool {
	v, err := r.Get(key, def)
	if err != nil {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed
		}
	}
	return def
}

// GetStrings returns the string list at key, or nil. Non-string elements
// are skipped.
func (r *Repository) GetStrings(key string) []string {
	v, err := r.Get(key, nil)
	if err != nil || v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Namespaces returns the loaded top-level keys.
func (r *Repository) Namespaces() []string {
	out := make([]string, 0, len(r.items))
	for k := range r.items {
		out = append(out, k)
	}
	return out
}

// ── Placeholder expansion ────────────────────────────────────────────────────

// expandTree walks a decoded document and expands env placeholders in every
// string value.
func expandTree(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			node[k] = expandTree(child)
		}
		return node
	case []any:
		for i, child := range node {
			node[i] = expandTree(child)
		}
		return node
	case string:
		return expand(node)
	default:
		return v
	}
}

// expand substitutes ${VAR} and ${VAR:default} from the environment. An
// unset or empty variable yields the default (empty when none given).
func expand(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	return os.Expand(s, func(ref string) string {
		name, def, _ := strings.Cut(ref, ":")
		if v := os.Getenv(name); v != "" {
			return v
		}
		return def
	})
}
