package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/rules"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/rules.yaml
var defaultRulesYAML []byte

const DefaultPreset = "classic"

var ErrUnknownPreset = errors.New("unknown rule preset")

// Presets maps a preset name to a complete, validated rule set.
type Presets map[string]models.Rules

type presetFile struct {
	Presets map[string]yaml.Node `yaml:"presets"`
}

// LoadPresets loads the rule presets.
// Search order: customPath -> ./configs/rules.yaml -> embedded default
func LoadPresets(customPath string) (Presets, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read presets %s: %w", customPath, err)
		}
		p, err := ParsePresets(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse presets %s: %w", customPath, err)
		}
		return p, nil
	}

	if data, err := os.ReadFile("configs/rules.yaml"); err == nil {
		if p, err := ParsePresets(data); err == nil {
			return p, nil
		}
	}

	return ParsePresets(defaultRulesYAML)
}

// ParsePresets decodes each preset over the classic defaults, so a preset only lists what it changes.
func ParsePresets(data []byte) (Presets, error) {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Presets) == 0 {
		return nil, fmt.Errorf("%w: no presets defined", rules.ErrInvalidConfig)
	}

	out := make(Presets, len(f.Presets))
	for name, node := range f.Presets {
		r := models.DefaultRules()
		if err := node.Decode(&r); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		if err := rules.ValidateRules(r); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		out[name] = r
	}
	return out, nil
}

// Get returns the named preset; an empty name means the default preset.
func (p Presets) Get(name string) (models.Rules, error) {
	if name == "" {
		name = DefaultPreset
	}
	r, ok := p[name]
	if !ok {
		if name == DefaultPreset {
			return models.DefaultRules(), nil
		}
		return models.Rules{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return r, nil
}

func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
