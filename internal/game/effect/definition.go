// Package effect implements the status-effect lifecycle: immutable authored
// definitions, runtime instances bound to a target, periodic resolution, and
// guaranteed modifier cleanup.
package effect

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/roadwar/internal/game/damage"
	"github.com/cory-johannsen/roadwar/internal/game/stat"
)

// Indefinite marks an effect that never expires on its own.
const Indefinite = -1

// PeriodicKind is what a periodic entry does to its target each turn.
type PeriodicKind int

const (
	PeriodicUnknown PeriodicKind = iota
	PeriodicDamage
	PeriodicHealing
	PeriodicEnergyDrain
	PeriodicEnergyRestore
)

var periodicNames = [...]string{"unknown", "damage", "healing", "energy_drain", "energy_restore"}

// String returns the snake_case name.
func (k PeriodicKind) String() string {
	if k < 0 || int(k) >= len(periodicNames) {
		return "unknown"
	}
	return periodicNames[k]
}

// UnmarshalYAML decodes a periodic kind from its name.
func (k *PeriodicKind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	for i, n := range periodicNames {
		if i > 0 && n == s {
			*k = PeriodicKind(i)
			return nil
		}
	}
	return fmt.Errorf("effect: unknown periodic kind %q", s)
}

// ModifierTemplate is the authored form of a modifier an effect creates.
type ModifierTemplate struct {
	Attribute stat.Attribute `yaml:"attribute"`
	Kind      stat.Kind      `yaml:"kind"`
	Value     float64        `yaml:"value"`
}

// Periodic is one per-turn resource effect.
type Periodic struct {
	Kind    PeriodicKind   `yaml:"kind"`
	Formula damage.Formula `yaml:"formula"`
}

// Behavior holds the flags other systems poll while the effect is active.
type Behavior struct {
	PreventsActions  bool `yaml:"prevents_actions"`
	PreventsMovement bool `yaml:"prevents_movement"`
	// DamageAmplification multiplies damage the target takes; 0 means none.
	DamageAmplification float64 `yaml:"damage_amplification"`
}

// Definition is the immutable authored description of a status effect.
type Definition struct {
	ID            string             `yaml:"id"`
	Name          string             `yaml:"name"`
	Description   string             `yaml:"description"`
	Category      stat.Category      `yaml:"category"`
	DurationTurns int                `yaml:"duration_turns"`
	Modifiers     []ModifierTemplate `yaml:"modifiers"`
	Periodic      []Periodic         `yaml:"periodic"`
	Behavior      Behavior           `yaml:"behavior"`
	LuaOnApply    string             `yaml:"lua_on_apply"`
	LuaOnTick     string             `yaml:"lua_on_tick"`
	LuaOnRemove   string             `yaml:"lua_on_remove"`
}

// Validate reports every authoring problem with d.
func (d *Definition) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.DurationTurns < Indefinite {
		errs = append(errs, fmt.Errorf("duration_turns must be >= -1, got %d", d.DurationTurns))
	}
	for i, m := range d.Modifiers {
		if m.Attribute == stat.AttributeUnknown {
			errs = append(errs, fmt.Errorf("modifiers[%d]: attribute is required", i))
		}
	}
	for i, p := range d.Periodic {
		if p.Kind == PeriodicUnknown {
			errs = append(errs, fmt.Errorf("periodic[%d]: kind is required", i))
		}
	}
	if d.Behavior.DamageAmplification < 0 {
		errs = append(errs, errors.New("behavior.damage_amplification must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("effect %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// DisplayName returns Name, or ID when Name is empty.
func (d *Definition) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// Registry holds all known Definitions keyed by ID.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds def, overwriting any existing entry with the same ID.
//
// Precondition: def must be non-nil and pass Validate.
func (r *Registry) Register(def *Definition) {
	r.defs[def.ID] = def
}

// Get returns the Definition for id, or (nil, false).
func (r *Registry) Get(id string) (*Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns every Definition sorted by ID.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir as one Definition and returns
// a populated Registry. Unknown fields are rejected and an omitted category
// defaults to status_effect.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error naming the offending file.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading effect dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		def := Definition{Category: stat.CategoryStatusEffect}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if _, dup := reg.Get(def.ID); dup {
			return nil, fmt.Errorf("parsing %q: duplicate effect id %q", path, def.ID)
		}
		reg.Register(&def)
	}
	return reg, nil
}
