package kernel

import (
	"time"

	"strideos/internal/task"
)

// EventKind tags a scheduler trace event.
type EventKind int

const (
	EventSpawn EventKind = iota
	EventDispatch
	EventSuspend
	EventExit
	EventPriority
	EventIdle
)

func (k EventKind) String() string {
	switch k {
	case EventSpawn:
		return "Spawn"
	case EventDispatch:
		return "Dispatch"
	case EventSuspend:
		return "Suspend"
	case EventExit:
		return "Exit"
	case EventPriority:
		return "Priority"
	case EventIdle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// Event is emitted on every scheduling decision.
type Event struct {
	Time   time.Time
	Tick   int64
	Kind   EventKind
	Pid    task.Pid
	Stride uint64
}
