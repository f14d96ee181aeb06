package driver

import "time"

// Stage identifies a pipeline segment for progress reporting.
type Stage uint8

const (
	StageClasspath Stage = iota
	StageDecode
	StageDeclare
	StageBuild
	StageLink
	StagePhases
)

func (s Stage) String() string {
	switch s {
	case StageClasspath:
		return "classpath"
	case StageDecode:
		return "decode"
	case StageDeclare:
		return "declare"
	case StageBuild:
		return "build"
	case StageLink:
		return "link"
	case StagePhases:
		return "phases"
	}
	return "unknown"
}

// Status reports where a unit of work is in its lifecycle.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event describes one progress update. File is empty for module-level
// stages; Phase is set only during StagePhases.
type Event struct {
	Stage   Stage
	Status  Status
	File    string
	Phase   string
	Elapsed time.Duration
}

// Observer receives progress events as the pipeline runs. Callbacks fire
// on the goroutine driving the pipeline and must not block for long.
type Observer func(Event)

func (o Observer) emit(ev Event) {
	if o != nil {
		o(ev)
	}
}
