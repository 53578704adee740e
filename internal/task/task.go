package task

import (
	"sync/atomic"

	"strideos/internal/mm"
)

// Pid uniquely identifies a task. Pids are allocated monotonically and
// never reused; pid 0 is reserved for the idle pseudo-task.
type Pid int64

// Status is a task's lifecycle state.
type Status int

const (
	StatusUninit Status = iota // memory reserved, not yet runnable
	StatusReady                // in the ready queue
	StatusRunning              // owned by the Processor
	StatusZombie               // exited, exit code awaiting collection
)

func (s Status) String() string {
	switch s {
	case StatusUninit:
		return "Uninit"
	case StatusReady:
		return "Ready"
	case StatusRunning:
		return "Running"
	case StatusZombie:
		return "Zombie"
	default:
		return "Unknown"
	}
}

// DefaultPriority is assigned at creation unless configured otherwise.
const DefaultPriority int64 = 16

// MaxSyscall bounds the syscall numbers tracked per task.
const MaxSyscall = 512

// TCB is the task control block: everything the scheduler needs to know
// about one task. The priority/pass/stride triple is kept private so the
// pass invariant (pass == BigStride/priority) cannot drift.
type TCB struct {
	Pid    Pid
	Status Status

	KernelStack mm.StackHandle
	Space       *mm.AddressSpace

	ExitCode int

	trapCtx TrapContext
	taskCtx TaskContext

	priority int64
	pass     uint64
	stride   Stride

	syscalls       [MaxSyscall]uint32
	firstScheduled int64 // tick of first dispatch, -1 until scheduled
}

// New builds a TCB in the Uninit state with stride zero.
func New(pid Pid, priority int64, stack mm.StackHandle, space *mm.AddressSpace, trap TrapContext) (*TCB, error) {
	if err := ValidatePriority(priority); err != nil {
		return nil, err
	}
	return &TCB{
		Pid:            pid,
		Status:         StatusUninit,
		KernelStack:    stack,
		Space:          space,
		trapCtx:        trap,
		priority:       priority,
		pass:           PassFor(priority),
		firstScheduled: -1,
	}, nil
}

func (t *TCB) Priority() int64 { return t.priority }
func (t *TCB) Pass() uint64    { return t.pass }
func (t *TCB) Stride() Stride  { return t.stride }

// Context returns the task's saved control-flow context for the switch
// primitive.
func (t *TCB) Context() *TaskContext { return &t.taskCtx }

// TrapContext returns the user-mode snapshot restored on trap return.
func (t *TCB) TrapContext() *TrapContext { return &t.trapCtx }

// SetPriority validates and applies a new priority, recomputing pass
// immediately so the very next scheduling decision reflects it.
func (t *TCB) SetPriority(p int64) error {
	if err := ValidatePriority(p); err != nil {
		return err
	}
	t.priority = p
	t.pass = PassFor(p)
	return nil
}

// AdvanceStride charges one pass. Called exactly once per suspend; the
// accumulator wraps by design.
func (t *TCB) AdvanceStride() {
	t.stride += Stride(t.pass)
}

// MarkScheduled records the tick of the task's first dispatch.
func (t *TCB) MarkScheduled(tick int64) {
	if t.firstScheduled < 0 {
		t.firstScheduled = tick
	}
}

// FirstScheduled returns the tick of first dispatch, or -1 if the task has
// never run.
func (t *TCB) FirstScheduled() int64 { return t.firstScheduled }

// CountSyscall bumps the per-task counter for one syscall number.
func (t *TCB) CountSyscall(id int) {
	if id >= 0 && id < MaxSyscall {
		t.syscalls[id]++
	}
}

// Syscalls returns a copy of the per-syscall counters.
func (t *TCB) Syscalls() [MaxSyscall]uint32 { return t.syscalls }

// PidAllocator hands out pids monotonically starting at 1.
type PidAllocator struct {
	next atomic.Int64
}

func NewPidAllocator() *PidAllocator {
	a := &PidAllocator{}
	a.next.Store(1)
	return a
}

// Alloc returns the next pid. Pids are never recycled.
func (a *PidAllocator) Alloc() Pid {
	return Pid(a.next.Add(1) - 1)
}
