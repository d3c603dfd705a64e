package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// slotMap preserves the declaration order of the slots mapping, which the
// ordered selection policy depends on. yaml.v3 map decoding would lose it.
type slotMap struct {
	specs map[string]SlotSpec
	order []string
}

func (m *slotMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("slots: expected a mapping, got %s", node.Tag)
	}
	m.specs = make(map[string]SlotSpec, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			return err
		}
		var spec SlotSpec
		if node.Content[i+1].Tag != "!!null" {
			if err := node.Content[i+1].Decode(&spec); err != nil {
				return fmt.Errorf("slot %q: %w", name, err)
			}
		}
		m.specs[name] = spec
		m.order = append(m.order, name)
	}
	return nil
}

// planFile is the on-disk YAML shape of a plan definition plus the utterance
// templates its actions render.
type planFile struct {
	Name                 string                            `yaml:"name"`
	Subject              string                            `yaml:"subject"`
	Slots                slotMap                           `yaml:"slots"`
	OptionalSlots        slotMap                           `yaml:"optional_slots"`
	FinishAction         string                            `yaml:"finish_action"`
	Exit                 map[string]string                 `yaml:"exit"`
	Chitchat             map[string]string                 `yaml:"chitchat"`
	ClarificationIntents []string                          `yaml:"clarification_intents"`
	Rules                map[string]map[string]RuleClauses `yaml:"rules"`
	Guardrails           map[string][]string               `yaml:"guardrails"`
	Templates            map[string]string                 `yaml:"templates"`
}

// Load parses and validates a single plan definition file, returning the
// immutable definition and its utterance templates.
func Load(path string) (*Definition, map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("plan: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a plan definition from YAML bytes. name is used only for
// error context.
func Parse(data []byte, name string) (*Definition, map[string]string, error) {
	var file planFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("plan: parse %s: %w", name, err)
	}
	if file.Name == "" {
		return nil, nil, fmt.Errorf("plan: %s: missing plan name", name)
	}
	if len(file.Slots.specs) == 0 {
		return nil, nil, fmt.Errorf("plan: %s: plan %q declares no slots", name, file.Name)
	}
	for slot, spec := range file.Slots.specs {
		if spec.AskAction == "" {
			return nil, nil, fmt.Errorf("plan: %s: slot %q has no ask_action", name, slot)
		}
	}

	def := &Definition{
		Name:                 file.Name,
		Subject:              file.Subject,
		Slots:                file.Slots.specs,
		SlotOrder:            file.Slots.order,
		OptionalSlots:        file.OptionalSlots.specs,
		FinishAction:         file.FinishAction,
		ExitMap:              file.Exit,
		ChitchatMap:          file.Chitchat,
		ClarificationIntents: file.ClarificationIntents,
		Rules:                CompileRules(file.Rules),
		Guardrails:           file.Guardrails,
	}
	if err := def.Validate(); err != nil {
		return nil, nil, err
	}
	return def, file.Templates, nil
}

// LoadDir loads every .yaml/.yml plan definition under dir. The second
// return value merges the template maps of all loaded plans.
func LoadDir(dir string) ([]*Definition, map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("plan: read plans directory: %w", err)
	}

	var defs []*Definition
	templates := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		def, tmpl, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, nil, err
		}
		defs = append(defs, def)
		for action, text := range tmpl {
			templates[action] = text
		}
	}
	if len(defs) == 0 {
		return nil, nil, fmt.Errorf("plan: no plan definitions found in %s", dir)
	}
	return defs, templates, nil
}
