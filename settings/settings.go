// Package settings holds the view settings a user toggles in the viewer.
//
// Only Explode, FilterNull and Sort influence derived view contents. The
// remaining fields are presentation hints carried along for consumers and
// must never take part in cache keys.
package settings

import (
	"fmt"
	"io/fs"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// SortAxis selects both the grouping key and the sort order of table views.
type SortAxis int

const (
	ByRetentionTime SortAxis = iota
	ByMassToCharge
)

// String returns the snake_case name of the axis.
func (a SortAxis) String() string {
	switch a {
	case ByRetentionTime:
		return "retention_time"
	case ByMassToCharge:
		return "mass_to_charge"
	default:
		return fmt.Sprintf("SortAxis(%d)", int(a))
	}
}

// Description is a one-line explanation for menus and help text.
func (a SortAxis) Description() string {
	switch a {
	case ByMassToCharge:
		return "Sort by mass to charge column"
	default:
		return "Sort by retention time column"
	}
}

// ParseSortAxis accepts any casing style of the axis name, e.g.
// "MassToCharge", "mass-to-charge" or "mass_to_charge".
func ParseSortAxis(s string) (SortAxis, error) {
	switch strcase.ToSnake(s) {
	case "retention_time", "rt":
		return ByRetentionTime, nil
	case "mass_to_charge", "mz":
		return ByMassToCharge, nil
	default:
		return 0, fmt.Errorf("unknown sort axis %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a SortAxis) MarshalText() ([]byte, error) {
	if a != ByRetentionTime && a != ByMassToCharge {
		return nil, fmt.Errorf("invalid sort axis %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *SortAxis) UnmarshalText(text []byte) error {
	v, err := ParseSortAxis(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// TimeUnits is the display unit for retention times.
type TimeUnits int

const (
	Second TimeUnits = iota
	Millisecond
	Minute
)

func (u TimeUnits) String() string {
	switch u {
	case Millisecond:
		return "millisecond"
	case Second:
		return "second"
	case Minute:
		return "minute"
	default:
		return fmt.Sprintf("TimeUnits(%d)", int(u))
	}
}

// Abbreviation returns the SI symbol of the unit.
func (u TimeUnits) Abbreviation() string {
	switch u {
	case Millisecond:
		return "ms"
	case Minute:
		return "min"
	default:
		return "s"
	}
}

// ParseTimeUnits accepts unit names in any casing style, plural or symbol.
func ParseTimeUnits(s string) (TimeUnits, error) {
	switch strcase.ToSnake(s) {
	case "millisecond", "milliseconds", "ms":
		return Millisecond, nil
	case "second", "seconds", "s":
		return Second, nil
	case "minute", "minutes", "min":
		return Minute, nil
	default:
		return 0, fmt.Errorf("unknown time units %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (u TimeUnits) MarshalText() ([]byte, error) {
	if u < Second || u > Minute {
		return nil, fmt.Errorf("invalid time units %d", int(u))
	}
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *TimeUnits) UnmarshalText(text []byte) error {
	v, err := ParseTimeUnits(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// MassToCharge holds display options of the mass-to-charge column.
type MassToCharge struct {
	Precision int `json:"precision" yaml:"precision"`
}

// RetentionTime holds display options of the retention time column.
type RetentionTime struct {
	Precision int       `json:"precision" yaml:"precision"`
	Units     TimeUnits `json:"units" yaml:"units"`
}

// Settings is a plain value; copy it freely.
type Settings struct {
	Explode    bool     `json:"explode" yaml:"explode"`
	FilterNull bool     `json:"filter_null" yaml:"filter_null"`
	Sort       SortAxis `json:"sort" yaml:"sort"`

	MassToCharge  MassToCharge  `json:"mass_to_charge" yaml:"mass_to_charge"`
	RetentionTime RetentionTime `json:"retention_time" yaml:"retention_time"`
	Legend        bool          `json:"legend" yaml:"legend"`
	Visible       *bool         `json:"visible,omitempty" yaml:"visible,omitempty"`
}

// Default returns the settings a fresh pane starts with.
func Default() Settings {
	return Settings{
		MassToCharge:  MassToCharge{Precision: 1},
		RetentionTime: RetentionTime{Precision: 2, Units: Second},
	}
}

// Load reads YAML settings from fsys, layered over Default.
func Load(fsys fs.FS, path string) (Settings, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML (or JSON, which is valid YAML) settings over Default.
func Parse(data []byte) (Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if s.MassToCharge.Precision < 0 || s.RetentionTime.Precision < 0 {
		return Settings{}, fmt.Errorf("parse settings: negative precision")
	}
	return s, nil
}
