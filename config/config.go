package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultManifestName = "models.yaml"

type AnimationEntry struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// ModelEntry groups a mesh file with the static lists the decoder needs
// alongside it. Materials override mesh shader names by mesh index.
type ModelEntry struct {
	Name       string           `yaml:"name"`
	Mesh       string           `yaml:"mesh"`
	Materials  []string         `yaml:"materials,omitempty"`
	Animations []AnimationEntry `yaml:"animations,omitempty"`
}

type Manifest struct {
	Encoding string       `yaml:"encoding,omitempty"`
	Models   []ModelEntry `yaml:"models"`
}

func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "Failed to unmarshal manifest")
	}

	seen := make(map[string]bool, len(m.Models))
	for i := range m.Models {
		me := &m.Models[i]
		if me.Mesh == "" {
			return nil, errors.Errorf("Model %d (%q) has no mesh file", i, me.Name)
		}
		if me.Name == "" {
			me.Name = strings.TrimSuffix(me.Mesh, filepath.Ext(me.Mesh))
		}
		if seen[me.Name] {
			return nil, errors.Errorf("Duplicate model name %q", me.Name)
		}
		seen[me.Name] = true

		for j := range me.Animations {
			anim := &me.Animations[j]
			if anim.File == "" {
				return nil, errors.Errorf("Model %q animation %d has no file", me.Name, j)
			}
			if anim.Name == "" {
				anim.Name = strings.TrimSuffix(anim.File, filepath.Ext(anim.File))
			}
		}
	}

	if err := SetEncoding(m.Encoding); err != nil {
		return nil, err
	}

	return &m, nil
}

func Load(path string) (*Manifest, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read manifest %q", path)
	}
	return Parse(data)
}

// LoadForDirectory loads path, or the default manifest of dir when path is
// empty. A directory without a manifest gives an empty one.
func LoadForDirectory(dir string, path string) (*Manifest, error) {
	if path != "" {
		return Load(path)
	}
	path = filepath.Join(dir, DefaultManifestName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Manifest{Models: make([]ModelEntry, 0)}, nil
	}
	return Load(path)
}

func (m *Manifest) Model(name string) (*ModelEntry, bool) {
	for i := range m.Models {
		if m.Models[i].Name == name {
			return &m.Models[i], true
		}
	}
	return nil, false
}

func (m *Manifest) Names() []string {
	names := make([]string, len(m.Models))
	for i := range m.Models {
		names[i] = m.Models[i].Name
	}
	return names
}
