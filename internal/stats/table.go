// Package stats loads per-faction stat tables and resolves roster entries
// to their printed characteristics.
package stats

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// StringList decodes from either a single scalar or a sequence of scalars.
// Stat tables written by hand use both forms for special rules and aliases.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || value.Value == "" {
			*l = nil
			return nil
		}
		*l = StringList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("StringList: cannot decode node kind %d at line %d", value.Kind, value.Line)
	}
}

// Characteristics are the printed values of one profile. Values are kept as
// text because tables contain entries such as "2D6" or "-".
type Characteristics struct {
	M  string `yaml:"M" json:"M"`
	WS string `yaml:"WS" json:"WS"`
	BS string `yaml:"BS" json:"BS"`
	S  string `yaml:"S" json:"S"`
	T  string `yaml:"T" json:"T"`
	W  string `yaml:"W" json:"W"`
	I  string `yaml:"I" json:"I"`
	A  string `yaml:"A" json:"A"`
	Ld string `yaml:"Ld" json:"Ld"`
}

// Empty reports whether no characteristic is set
func (c Characteristics) Empty() bool {
	return c == Characteristics{}
}

// Profile is a named row of characteristics (a rider, a crew member, a mount)
type Profile struct {
	Name            string `yaml:"name" json:"name"`
	Characteristics `yaml:",inline"`
}

// StatLine is the printed statistics of one unit
type StatLine struct {
	ID              string     `yaml:"id" json:"id"`
	Name            string     `yaml:"name" json:"name"`
	Unit            string     `yaml:"unit" json:"-"`
	Aliases         StringList `yaml:"aliases" json:"aliases,omitempty"`
	Characteristics `yaml:",inline"`
	Profiles        []Profile  `yaml:"profiles" json:"profiles,omitempty"`
	MountIDs        StringList `yaml:"mountIds" json:"mountIds,omitempty"`
	SpecialRules    StringList `yaml:"specialRules" json:"specialRules,omitempty"`
	UnitCategory    string     `yaml:"unitCategory" json:"unitCategory,omitempty"`
	TroopType       string     `yaml:"troopType" json:"troopType,omitempty"`
	BaseSize        string     `yaml:"baseSize" json:"baseSize,omitempty"`
	Armour          string     `yaml:"armour" json:"armour,omitempty"`
}

// Rows returns the profiles to display. A line without explicit profiles
// yields a single row from its top-level characteristics.
func (s StatLine) Rows() []Profile {
	if len(s.Profiles) > 0 {
		return s.Profiles
	}
	if s.Characteristics.Empty() {
		return nil
	}
	return []Profile{{Name: s.Name, Characteristics: s.Characteristics}}
}

// ReadTable decodes a stat table. YAML and JSON input are both accepted.
func ReadTable(r io.Reader) ([]StatLine, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stat table: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var lines []StatLine
	if err := yaml.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("parse stat table: %w", err)
	}
	return Prepare(lines), nil
}

// Prepare fills in derived fields: the display name from the alternate
// "unit" field and a stable id from the normalized name. Lines without any
// name are dropped.
func Prepare(lines []StatLine) []StatLine {
	out := make([]StatLine, 0, len(lines))
	for _, line := range lines {
		if line.Name == "" {
			line.Name = line.Unit
		}
		if line.Name == "" {
			continue
		}
		if line.ID == "" {
			line.ID = NormalizeKey(line.Name)
		}
		out = append(out, line)
	}
	return out
}
