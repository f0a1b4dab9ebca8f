package registry

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

var (
	builtinOnce sync.Once
	builtin     *Registry
)

// Builtin returns the embedded registry: scaffold patterns for go, python
// and typescript plus property schemas for the common component types. The
// data is parsed once and shared.
func Builtin() *Registry {
	builtinOnce.Do(func() {
		builtin = New()
		entries, err := builtinFS.ReadDir("builtin")
		if err != nil {
			panic(fmt.Sprintf("registry: embedded builtins unreadable: %v", err))
		}
		for _, e := range entries {
			data, err := builtinFS.ReadFile("builtin/" + e.Name())
			if err != nil {
				panic(fmt.Sprintf("registry: read %s: %v", e.Name(), err))
			}
			var f File
			if err := yaml.Unmarshal(data, &f); err != nil {
				panic(fmt.Sprintf("registry: parse %s: %v", e.Name(), err))
			}
			builtin.add(&f)
		}
	})
	return builtin
}
