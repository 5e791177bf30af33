package driver

import (
	"fmt"
	"strings"

	"swell/internal/observ"
)

// Stage is the last pipeline stage Compile runs.
type Stage uint8

const (
	StageParse Stage = iota + 1
	StageResolve
	// StageCheck runs type checking and the purity checker.
	StageCheck
	StageLower
)

var stageNames = [...]string{
	StageParse:   "parse",
	StageResolve: "resolve",
	StageCheck:   "check",
	StageLower:   "lower",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) && stageNames[s] != "" {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", s)
}

// ParseStage accepts the names printed by Stage.String.
func ParseStage(s string) (Stage, error) {
	for i, name := range stageNames {
		if name != "" && strings.EqualFold(s, name) {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q (expected parse|resolve|check|lower)", s)
}

// DefaultMaxDiagnostics caps the returned bag when Options leave it zero.
const DefaultMaxDiagnostics = 200

// Options configure Compile.
type Options struct {
	// Jobs bounds parallel parse, resolve and lower; 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the returned bag; 0 means DefaultMaxDiagnostics.
	MaxDiagnostics int
	// Cfg evaluates #[cfg(key = "value")] attributes.
	Cfg map[string]string
	// StorageValueBytes bounds storage element types; 0 means the project default.
	StorageValueBytes int
	// Stage is the last stage to run; 0 means StageLower.
	Stage Stage
	// Cache, when set, stores lowered IR keyed by source and option hashes.
	Cache *DiskCache
	// Timer, when set, records one phase per stage.
	Timer *observ.Timer
}

func (o Options) stage() Stage {
	if o.Stage == 0 {
		return StageLower
	}
	return o.Stage
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return DefaultMaxDiagnostics
	}
	return o.MaxDiagnostics
}
