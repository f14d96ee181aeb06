package diag

import (
	"fmt"
)

// Code is a compact, stable identifier for a diagnostic kind. Codes are
// banded per component so a code alone names the producing stage.
type Code uint16

const (
	UnknownCode Code = 0

	// Declaration building (syntax tree -> raw typed IR).
	BuildInfo              Code = 1000
	BuildUnexpectedNode    Code = 1001
	BuildDuplicateMember   Code = 1002
	BuildBadModality       Code = 1003
	BuildMissingReturnType Code = 1004

	// Classpath / external dependencies.
	PathInfo           Code = 2000
	PathMissingClass   Code = 2001
	PathBrokenStub     Code = 2002
	PathCacheCorrupted Code = 2003

	// Resolution: scopes, members, overrides.
	ResInfo                 Code = 3000
	ResUnresolvedReference  Code = 3001
	ResUnresolvedSupertype  Code = 3002
	ResOverrideConflict     Code = 3003
	ResReturnTypeMismatch   Code = 3004
	ResAmbiguousMember      Code = 3005

	// Builtins synthesis.
	BltInfo            Code = 4000
	BltUnknownName     Code = 4001
	BltFinalizeFailure Code = 4002

	// Phase scheduling.
	PhaseInfo               Code = 5000
	PhaseUnknownName        Code = 5001
	PhaseCyclicPrerequisite Code = 5002
	PhaseOrderViolation     Code = 5003
	PhaseDuplicate          Code = 5004
	PhaseAborted            Code = 5005

	// Lowering and analyses.
	LowInfo                  Code = 6000
	LowBridgeClash           Code = 6001
	LowResidualVirtualCall   Code = 6002
	LowEscapeDidNotConverge  Code = 6003
	LowMissingReturn         Code = 6004
)

func (c Code) String() string {
	return fmt.Sprintf("VL%04d", uint16(c))
}

// Band returns the producing component for a code.
func (c Code) Band() string {
	switch {
	case c >= 1000 && c < 2000:
		return "build"
	case c >= 2000 && c < 3000:
		return "classpath"
	case c >= 3000 && c < 4000:
		return "resolve"
	case c >= 4000 && c < 5000:
		return "builtins"
	case c >= 5000 && c < 6000:
		return "phases"
	case c >= 6000 && c < 7000:
		return "lower"
	default:
		return "unknown"
	}
}
