package engine

import (
	"fmt"
	"strings"

	"github.com/bamsammich/treecopy/internal/pathkind"
)

// ConflictPolicy decides what happens when a destination entry already
// exists. It is chosen once per call and applied to every entry.
type ConflictPolicy int

const (
	Abort ConflictPolicy = iota
	Skip
	Overwrite
)

var policyNames = [...]string{
	Abort:     "abort",
	Skip:      "skip",
	Overwrite: "overwrite",
}

func (p ConflictPolicy) String() string {
	if p >= 0 && int(p) < len(policyNames) {
		return policyNames[p]
	}
	return "unknown"
}

// ParseConflictPolicy maps a policy name, case-insensitively, to its value.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	for i, name := range policyNames {
		if strings.EqualFold(s, name) {
			return ConflictPolicy(i), nil
		}
	}
	return Abort, fmt.Errorf("unknown conflict policy %q (want abort, skip or overwrite)", s)
}

// Action is the resolver's verdict for a single destination entry.
type Action int

const (
	ActionProceed Action = iota
	ActionSkip
	ActionAbort
)

func (a Action) String() string {
	switch a {
	case ActionProceed:
		return "proceed"
	case ActionSkip:
		return "skip"
	case ActionAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// Resolve classifies dst and applies policy to it. An absent destination
// always proceeds.
func Resolve(dst string, policy ConflictPolicy) (Action, error) {
	existing, err := pathkind.Classify(dst)
	if err != nil {
		return ActionAbort, err
	}
	return resolveAction(existing, policy), nil
}

func resolveAction(existing pathkind.Kind, policy ConflictPolicy) Action {
	if existing == pathkind.NotFound {
		return ActionProceed
	}
	switch policy {
	case Skip:
		return ActionSkip
	case Overwrite:
		return ActionProceed
	default:
		return ActionAbort
	}
}
