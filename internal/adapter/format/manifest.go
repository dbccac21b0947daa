package format

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"reelbridge/internal/domain"
)

// Manifest declares format adapters backed by external converter programs.
//
// Example:
//
//	adapters:
//	  - name: fcpx
//	    suffixes: [fcpxml]
//	    read:
//	      command: ["fcpx2reel", "{path}"]
//	      env: ["FCPX_STRICT=1"]
//	    write:
//	      command: ["reel2fcpx", "{path}"]
type Manifest struct {
	Adapters []ManifestAdapter `yaml:"adapters"`
}

// ManifestAdapter declares one command-backed adapter. At least one of Read
// and Write must be present.
type ManifestAdapter struct {
	Name     string           `yaml:"name"`
	Suffixes []string         `yaml:"suffixes"`
	Read     *ManifestCommand `yaml:"read"`
	Write    *ManifestCommand `yaml:"write"`
}

// ManifestCommand is the argv of an external converter, with optional extra
// environment entries in KEY=VALUE form. Every occurrence of {path} in the
// argv is replaced with the file path of the operation.
type ManifestCommand struct {
	Command []string `yaml:"command"`
	Env     []string `yaml:"env"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewDomainError("manifest.Load", domain.ErrManifestLoad, err.Error())
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, domain.NewDomainError("manifest.Load", domain.ErrManifestLoad, err.Error())
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest invariants: unique non-empty adapter names,
// at least one command per adapter, non-empty argv and suffix entries.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Adapters))
	for i, a := range m.Adapters {
		if a.Name == "" {
			return domain.NewDomainError("manifest.Validate", domain.ErrManifestLoad,
				fmt.Sprintf("adapter %d has no name", i))
		}
		if seen[a.Name] {
			return domain.NewDomainError("manifest.Validate", domain.ErrManifestLoad,
				fmt.Sprintf("duplicate adapter name %q", a.Name))
		}
		seen[a.Name] = true
		if a.Read == nil && a.Write == nil {
			return domain.NewDomainError("manifest.Validate", domain.ErrManifestLoad,
				fmt.Sprintf("adapter %q declares neither read nor write", a.Name))
		}
		for _, c := range []*ManifestCommand{a.Read, a.Write} {
			if c != nil && len(c.Command) == 0 {
				return domain.NewDomainError("manifest.Validate", domain.ErrManifestLoad,
					fmt.Sprintf("adapter %q has an empty command", a.Name))
			}
		}
		for _, s := range a.Suffixes {
			if s == "" {
				return domain.NewDomainError("manifest.Validate", domain.ErrManifestLoad,
					fmt.Sprintf("adapter %q has an empty suffix", a.Name))
			}
		}
	}
	return nil
}
