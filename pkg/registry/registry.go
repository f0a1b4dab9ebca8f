// Package registry resolves implementation patterns for component types and
// target languages.
//
// A pattern row is keyed by (componentType, language); the wildcard type *
// matches any component. Registries are immutable once built, so one instance
// serves concurrent compilations.
package registry

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// PatternRow is one template in a patterns file. Language may be omitted
// when the file declares a file-wide language.
type PatternRow struct {
	ComponentType string `yaml:"componentType"`
	Language      string `yaml:"language"`
	Template      string `yaml:"template"`
}

// File is the on-disk shape of a patterns file. The embedded builtins and
// the files given to --maps share it.
type File struct {
	Language  string       `yaml:"language"`
	Extension string       `yaml:"extension"`
	Patterns  []PatternRow `yaml:"patterns"`
	// Types holds property schemas: type tag to property key to value kind.
	Types map[string]map[string]string `yaml:"types"`
}

type key struct {
	componentType string
	language      string
}

// Registry is an immutable set of pattern rows, language extensions, and
// per-type property schemas.
type Registry struct {
	patterns map[key]string
	exts     map[string]string
	schemas  map[string]map[string]string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		patterns: make(map[key]string),
		exts:     make(map[string]string),
		schemas:  make(map[string]map[string]string),
	}
}

// Load reads a patterns file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided patterns file
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Merge returns a copy of the registry with the files folded in. Later
// files override earlier rows for the same key, so user-provided patterns
// take precedence over builtins.
func (r *Registry) Merge(files ...*File) *Registry {
	out := New()
	for k, v := range r.patterns {
		out.patterns[k] = v
	}
	for k, v := range r.exts {
		out.exts[k] = v
	}
	for k, v := range r.schemas {
		out.schemas[k] = v
	}
	for _, f := range files {
		out.add(f)
	}
	return out
}

func (r *Registry) add(f *File) {
	if f.Language != "" && f.Extension != "" {
		r.exts[f.Language] = f.Extension
	}
	for _, row := range f.Patterns {
		lang := row.Language
		if lang == "" {
			lang = f.Language
		}
		if lang == "" || row.ComponentType == "" {
			continue
		}
		r.patterns[key{row.ComponentType, lang}] = row.Template
	}
	for tag, schema := range f.Types {
		r.schemas[tag] = schema
	}
}

// Template returns the pattern for a component type and language, trying the
// exact type first and the wildcard second.
func (r *Registry) Template(componentType, language string) (string, bool) {
	if t, ok := r.patterns[key{componentType, language}]; ok {
		return t, true
	}
	t, ok := r.patterns[key{"*", language}]
	return t, ok
}

// Extension returns the artifact file extension for a language. Languages
// the registry does not know fall back to a dot plus the language name.
func (r *Registry) Extension(language string) string {
	if ext, ok := r.exts[language]; ok {
		return ext
	}
	return "." + language
}

// PropertySchema returns the property schema for a component type.
func (r *Registry) PropertySchema(componentType string) (map[string]string, bool) {
	schema, ok := r.schemas[componentType]
	return schema, ok
}

// Languages returns the languages with a known extension, sorted.
func (r *Registry) Languages() []string {
	out := make([]string, 0, len(r.exts))
	for lang := range r.exts {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}
