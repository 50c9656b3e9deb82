// Package view turns a parsed checklist into the flat list of rows the panel
// displays.
package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/magdy/fawkes/mdpanel/internal/checklist"
)

// Kind is the type of a display row.
type Kind int

const (
	KindText Kind = iota
	KindSeparator
	KindCheckbox
)

func (k Kind) String() string {
	switch k {
	case KindSeparator:
		return "separator"
	case KindCheckbox:
		return "checkbox-item"
	default:
		return "text"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "text":
		*k = KindText
	case "separator":
		*k = KindSeparator
	case "checkbox-item":
		*k = KindCheckbox
	default:
		return fmt.Errorf("unknown node kind %q", string(b))
	}
	return nil
}

// Placeholder labels.
const (
	MsgNoFile     = "No file selected - configure in preferences"
	MsgEmptyRange = "No content in selected range"
	MsgNoItems    = "No checklist items found"
	MsgLoadError  = "Error loading file"
)

// Node is one row of the panel.
type Node struct {
	Kind    Kind   `json:"kind"`
	Label   string `json:"label"`
	Checked bool   `json:"checked,omitempty"`
	// Line is the 1-based source line for checkbox rows.
	Line int `json:"line,omitempty"`

	// Item and Generation identify the checkbox row within its snapshot.
	Item       checklist.Item `json:"-"`
	Generation uint64         `json:"-"`
	// OnActivate is set by the panel for checkbox rows.
	OnActivate func() tea.Cmd `json:"-"`
}

// Selectable reports whether the row reacts to activation.
func (n Node) Selectable() bool {
	return n.Kind == KindCheckbox && n.OnActivate != nil
}

// Placeholder returns the single informational row shown instead of content.
func Placeholder(msg string) []Node {
	return []Node{{Kind: KindText, Label: msg}}
}

// IsPlaceholder reports whether nodes is a single text row with label msg.
func IsPlaceholder(nodes []Node, msg string) bool {
	return len(nodes) == 1 && nodes[0].Kind == KindText && nodes[0].Label == msg
}
