// Package format holds the viewer settings and the formatting model the
// host renders in its property pane.
package format

import "github.com/DanielSallander/Pdf-Viewer/pkg/dataview"

// Object and property names of the settings card.
const (
	ObjectName = "dataCard"

	PropShowHeader       = "showHeader"
	PropScrollOverflow   = "scrollOverflow"
	PropShowExportButton = "showExportButton"
)

// Settings is an immutable snapshot of the toggles for one update cycle.
type Settings struct {
	ShowHeader       bool `json:"showHeader"`
	ScrollOverflow   bool `json:"scrollOverflow"`
	ShowExportButton bool `json:"showExportButton"`
}

// Defaults returns every toggle switched on.
func Defaults() Settings {
	return Settings{ShowHeader: true, ScrollOverflow: true, ShowExportButton: true}
}

// SettingsFromObjects reads dataCard properties, falling back to defaults
// for anything missing or not a boolean.
func SettingsFromObjects(objects dataview.Objects, defaults Settings) Settings {
	return Settings{
		ShowHeader:       boolValue(objects, PropShowHeader, defaults.ShowHeader),
		ScrollOverflow:   boolValue(objects, PropScrollOverflow, defaults.ScrollOverflow),
		ShowExportButton: boolValue(objects, PropShowExportButton, defaults.ShowExportButton),
	}
}

func boolValue(objects dataview.Objects, property string, def bool) bool {
	props, ok := objects[ObjectName]
	if !ok {
		return def
	}
	if v, ok := props[property].(bool); ok {
		return v
	}
	return def
}

// -----------------------------------------------------------------------------
// Formatting Model
// -----------------------------------------------------------------------------

// ToggleSwitch is the only control type the viewer exposes.
const ToggleSwitch = "ToggleSwitch"

// Descriptor addresses one property of one object.
type Descriptor struct {
	ObjectName   string `json:"objectName"`
	PropertyName string `json:"propertyName"`
}

// Control is a slice's editor.
type Control struct {
	Type       string     `json:"type"`
	Descriptor Descriptor `json:"descriptor"`
	Value      bool       `json:"value"`
}

// Slice is one row in a group.
type Slice struct {
	UID         string  `json:"uid"`
	DisplayName string  `json:"displayName"`
	Control     Control `json:"control"`
}

// Group is a titled set of slices.
type Group struct {
	UID         string  `json:"uid"`
	DisplayName string  `json:"displayName"`
	Slices      []Slice `json:"slices"`
}

// Card is a top-level pane section.
type Card struct {
	UID                        string       `json:"uid"`
	Description                string       `json:"description"`
	DisplayName                string       `json:"displayName"`
	Groups                     []Group      `json:"groups"`
	RevertToDefaultDescriptors []Descriptor `json:"revertToDefaultDescriptors"`
}

// Model is the full descriptor handed to the host.
type Model struct {
	Cards []Card `json:"cards"`
}

// FormattingModel describes the settings card populated with s.
func FormattingModel(s Settings) Model {
	toggles := []struct {
		prop, name string
		value      bool
	}{
		{PropShowHeader, "Show Header", s.ShowHeader},
		{PropScrollOverflow, "Scroll Overflow", s.ScrollOverflow},
		{PropShowExportButton, "Show Export Button", s.ShowExportButton},
	}

	group := Group{UID: "dataCard_showHeader_group_uid", DisplayName: "Viewer Settings"}
	card := Card{
		UID:         "dataCard_uid",
		Description: "PDF Viewer Settings",
		DisplayName: "Settings",
	}
	for _, tg := range toggles {
		d := Descriptor{ObjectName: ObjectName, PropertyName: tg.prop}
		group.Slices = append(group.Slices, Slice{
			UID:         tg.prop + "Card_topLevelToggle_showToggleSwitch_uid",
			DisplayName: tg.name,
			Control:     Control{Type: ToggleSwitch, Descriptor: d, Value: tg.value},
		})
		card.RevertToDefaultDescriptors = append(card.RevertToDefaultDescriptors, d)
	}
	card.Groups = []Group{group}

	return Model{Cards: []Card{card}}
}
