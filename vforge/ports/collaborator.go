package ports

import (
	"github.com/ZanzyTHEbar/value-forge/vforge/catalog"
	"github.com/ZanzyTHEbar/value-forge/vforge/codepoint"
	"github.com/ZanzyTHEbar/value-forge/vforge/randsource"
)

// Collaborator is the contract handed to the surrounding value-shape layer:
// raw tagged byte draws, script-aware codepoint draws, and control over the
// active draw source so a caller can flip between generative, recording, and
// replaying without touching generation logic.
type Collaborator interface {
	DrawBytes(length int, reason string) ([]byte, error)
	DrawCodepoint(script string, filter catalog.Filter) (codepoint.CodepointInfo, error)
	PickScript() (string, error)
	Source() randsource.Source
	SetSource(src randsource.Source)
}
