package task

import "fmt"

// Processor owns the single task bound to the CPU plus the idle
// control-flow context used to re-enter the scheduling loop. It is the
// only component that may answer "who is running right now"; syscalls
// that act on the calling task go through it rather than any global
// task table.
type Processor struct {
	current *TCB
	idleCtx TaskContext
}

func NewProcessor() *Processor { return &Processor{} }

// TakeCurrent removes and returns the current task, leaving the slot
// empty. ok is false when the core is idle.
func (p *Processor) TakeCurrent() (*TCB, bool) {
	t := p.current
	p.current = nil
	return t, t != nil
}

// Current returns a borrowed view of the running task. Callers must not
// retain it past the syscall being handled.
func (p *Processor) Current() (*TCB, bool) {
	return p.current, p.current != nil
}

// SetCurrent installs t as the running task. Installing over an occupied
// slot is a broken one-current-task invariant, not a recoverable error.
func (p *Processor) SetCurrent(t *TCB) {
	if p.current != nil {
		panic(fmt.Sprintf("processor: installing task %d while task %d is current", t.Pid, p.current.Pid))
	}
	t.Status = StatusRunning
	p.current = t
}

// IdleContext returns the context the switch primitive lands in when the
// core has nothing to run.
func (p *Processor) IdleContext() *TaskContext { return &p.idleCtx }
