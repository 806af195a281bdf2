package engine

import (
	"github.com/dgnsrekt/pitchperfect/internal/effects"
)

// Node is a unit that can be attached to an Engine.
type Node interface {
	Name() string
}

// EffectNode hosts an effect stage in the engine.
type EffectNode struct {
	stage effects.Stage
}

// NewEffectNode wraps stage for attachment.
func NewEffectNode(stage effects.Stage) *EffectNode {
	return &EffectNode{stage: stage}
}

// Stage returns the hosted stage.
func (n *EffectNode) Stage() effects.Stage { return n.stage }

func (n *EffectNode) Name() string { return n.stage.String() }
