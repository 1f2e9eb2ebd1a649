package vehicle

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/roadwar/internal/game/damage"
	"github.com/cory-johannsen/roadwar/internal/game/stat"
)

// GrantTemplate is the authored form of a Grant.
type GrantTemplate struct {
	Attribute stat.Attribute `yaml:"attribute"`
	Kind      stat.Kind      `yaml:"kind"`
	Value     float64        `yaml:"value"`
	To        ComponentType  `yaml:"to"`
}

// ComponentTemplate is the authored form of a Component.
type ComponentTemplate struct {
	ID          string                       `yaml:"id"`
	Name        string                       `yaml:"name"`
	Type        ComponentType                `yaml:"type"`
	MaxHealth   int                          `yaml:"max_health"`
	MaxEnergy   int                          `yaml:"max_energy"`
	Base        map[string]float64           `yaml:"base"`
	Resistances map[string]damage.Resistance `yaml:"resistances"`
	Weapons     []damage.Formula             `yaml:"weapons"`
	Grants      []GrantTemplate              `yaml:"grants"`
}

// SeatTemplate is the authored form of a Seat.
type SeatTemplate struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Controls string `yaml:"controls"`
}

// Template is the immutable authored description of a vehicle.
type Template struct {
	ID         string              `yaml:"id"`
	Name       string              `yaml:"name"`
	Components []ComponentTemplate `yaml:"components"`
	Seats      []SeatTemplate      `yaml:"seats"`
}

// Validate reports every structural problem with the template.
func (t Template) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	ids := make(map[string]bool, len(t.Components))
	chassis := 0
	for i, c := range t.Components {
		switch {
		case c.ID == "":
			errs = append(errs, fmt.Errorf("components[%d]: id must not be empty", i))
		case ids[c.ID]:
			errs = append(errs, fmt.Errorf("components[%d]: duplicate id %q", i, c.ID))
		}
		ids[c.ID] = true
		if c.Type == TypeUnknown {
			errs = append(errs, fmt.Errorf("component %q: type is required", c.ID))
		}
		if c.Type == Chassis {
			chassis++
		}
		if c.MaxHealth < 1 {
			errs = append(errs, fmt.Errorf("component %q: max_health must be >= 1", c.ID))
		}
		for name := range c.Base {
			if _, err := stat.ParseAttribute(name); err != nil {
				errs = append(errs, fmt.Errorf("component %q: %w", c.ID, err))
			}
		}
		for j, g := range c.Grants {
			if g.Attribute == stat.AttributeUnknown || g.To == TypeUnknown {
				errs = append(errs, fmt.Errorf("component %q: grants[%d]: attribute and to are required", c.ID, j))
			}
		}
	}
	if chassis == 0 {
		errs = append(errs, errors.New("at least one chassis component is required"))
	}
	for i, s := range t.Seats {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("seats[%d]: id must not be empty", i))
		}
		if !ids[s.Controls] {
			errs = append(errs, fmt.Errorf("seat %q: controls unknown component %q", s.ID, s.Controls))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("vehicle template %q: %w", t.ID, errors.Join(errs...))
	}
	return nil
}

// Build instantiates a live vehicle named instanceID from t. The template is
// not modified and shares no mutable state with the result.
//
// Postcondition: Returns a Vehicle at full health and energy with empty seats, or a validation error.
func Build(t Template, instanceID string) (*Vehicle, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if instanceID == "" {
		instanceID = t.ID
	}
	v := &Vehicle{ID: instanceID, Name: t.Name, TemplateID: t.ID}
	for _, ct := range t.Components {
		c := &Component{
			ID:          ct.ID,
			Name:        ct.Name,
			Type:        ct.Type,
			MaxHealth:   ct.MaxHealth,
			Health:      ct.MaxHealth,
			MaxEnergy:   ct.MaxEnergy,
			Energy:      ct.MaxEnergy,
			base:        make(map[stat.Attribute]float64, len(ct.Base)+2),
			resistances: make(map[string]damage.Resistance, len(ct.Resistances)),
			weapons:     append([]damage.Formula(nil), ct.Weapons...),
			mods:        stat.NewSet(),
			vehicle:     v,
		}
		for name, val := range ct.Base {
			attr, _ := stat.ParseAttribute(name)
			c.base[attr] = val
		}
		c.base[stat.MaxHealth] = float64(ct.MaxHealth)
		if ct.MaxEnergy > 0 {
			c.base[stat.MaxEnergy] = float64(ct.MaxEnergy)
		}
		for dt, r := range ct.Resistances {
			c.resistances[dt] = r
		}
		label := c.Name
		if label == "" {
			label = c.ID
		}
		for _, g := range ct.Grants {
			c.grants = append(c.grants, Grant{
				Modifier: stat.NewModifier(g.Attribute, g.Kind, g.Value, label, stat.CategoryEquipment),
				To:       g.To,
			})
		}
		v.components = append(v.components, c)
	}
	for _, st := range t.Seats {
		v.seats = append(v.seats, &Seat{ID: st.ID, Name: st.Name, Controls: st.Controls})
	}
	return v, nil
}

// LoadTemplates reads every *.yaml file in dir as one vehicle Template and
// returns them keyed by ID. Unknown fields are rejected.
//
// Precondition: dir must be a readable directory.
// Postcondition: Every returned Template passes Validate.
func LoadTemplates(dir string) (map[string]Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading vehicle dir %q: %w", dir, err)
	}
	out := make(map[string]Template)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var t Template
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&t); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if _, dup := out[t.ID]; dup {
			return nil, fmt.Errorf("parsing %q: duplicate vehicle id %q", path, t.ID)
		}
		out[t.ID] = t
	}
	return out, nil
}
