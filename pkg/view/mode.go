package view

import (
	"fmt"
	"strings"
)

// Mode selects how [View.Activate] interprets a node activation.
type Mode string

const (
	// ModeToggle collapses or expands the activated node.
	ModeToggle Mode = "toggle"
	// ModeSelect reports the activated node's payload to the host.
	ModeSelect Mode = "select"
)

// Modes returns the supported modes.
func Modes() []Mode { return []Mode{ModeToggle, ModeSelect} }

// ParseMode parses a mode name. The empty string selects [ModeToggle].
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeToggle:
		return ModeToggle, nil
	case ModeSelect:
		return ModeSelect, nil
	}
	return "", fmt.Errorf("unknown mode %q (want toggle or select)", s)
}

// Next returns the other mode.
func (m Mode) Next() Mode {
	if m == ModeSelect {
		return ModeToggle
	}
	return ModeSelect
}

func (m Mode) String() string { return string(m) }
