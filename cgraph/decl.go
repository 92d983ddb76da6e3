// Package cgraph derives the static communication structure of a
// model: which template talks to which over which channel. It reads
// template/channel declarations, no checker involved, and renders the
// result as a textual diagram.
package cgraph

import (
	"errors"
	"fmt"
)

var (
	// MalformedDeclarationError is matched by every declaration
	// validation error from Build.
	MalformedDeclarationError = errors.New("cgraph: Malformed template declaration")
)

func declErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", MalformedDeclarationError, fmt.Sprintf(format, args...))
}

// Direction tells whether a channel use emits or receives.
type Direction int

const (
	Send Direction = iota
	Receive
)

func (d Direction) String() string {
	switch d {
	case Send:
		return "send"
	case Receive:
		return "receive"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ChannelUse is one channel synchronization appearing on an edge of a
// template.
type ChannelUse struct {
	Channel   string
	Direction Direction
}

// TemplateDecl declares a template and the channel uses of its edges,
// in model order. Edges without synchronization contribute no use.
type TemplateDecl struct {
	Name string
	Uses []ChannelUse
}

func validate(decls []TemplateDecl) error {
	seen := make(map[string]bool, len(decls))
	for i, d := range decls {
		if d.Name == "" {
			return declErr("template %d has no name", i)
		}
		if seen[d.Name] {
			return declErr("template %q is declared twice", d.Name)
		}
		seen[d.Name] = true
		for _, u := range d.Uses {
			if u.Channel == "" {
				return declErr("template %q uses a channel with no name", d.Name)
			}
			if u.Direction != Send && u.Direction != Receive {
				return declErr("template %q uses channel %q with direction %d", d.Name, u.Channel, int(u.Direction))
			}
		}
	}
	return nil
}
