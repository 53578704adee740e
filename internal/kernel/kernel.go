package kernel

import (
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"strideos/internal/loader"
	"strideos/internal/mm"
	"strideos/internal/task"
)

var (
	ErrImageNotFound     = loader.ErrImageNotFound
	ErrInvalidPriority   = task.ErrInvalidPriority
	ErrNoSuchTask        = task.ErrNoSuchTask
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrStillRunning      = errors.New("task has not exited")
)

// Kernel wires the ready queue, the processor and the collaborators, and
// exposes the syscall surface. One mutex brackets every suspend/resume
// transition — the single-core stand-in for interrupt exclusion — so
// stride updates are totally ordered and the one-current-task invariant
// holds at every observable instant.
type Kernel struct {
	mu sync.Mutex

	cfg Config
	log *slog.Logger
	sw  task.Switcher

	timer  *Timer
	pids   *task.PidAllocator
	ready  *task.Manager
	proc   *task.Processor
	images *loader.Registry
	stacks *mm.StackPool

	zombies map[task.Pid]int // exit codes awaiting collection

	events    chan Event
	csvFile   *os.File
	csvWriter *csv.Writer
}

// New creates a kernel around the given image registry. The context-switch
// primitive defaults to a recording no-op; replace it with UseSwitcher
// when wiring real context switching.
func New(cfg Config, images *loader.Registry) *Kernel {
	return &Kernel{
		cfg:     cfg,
		log:     NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr),
		sw:      &task.NopSwitcher{},
		timer:   NewTimer(256),
		pids:    task.NewPidAllocator(),
		ready:   task.NewManager(),
		proc:    task.NewProcessor(),
		images:  images,
		stacks:  mm.NewStackPool(cfg.KernelStacks),
		zombies: make(map[task.Pid]int),
		events:  make(chan Event, 256),
	}
}

// UseSwitcher installs the context-switch primitive. Must be called before
// any task runs.
func (k *Kernel) UseSwitcher(sw task.Switcher) { k.sw = sw }

// EnableCSVTrace mirrors scheduler events to a CSV file. Must be called
// before Run.
func (k *Kernel) EnableCSVTrace(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	w.Write([]string{"timestamp", "tick", "event", "pid", "stride"})
	w.Flush()
	k.csvFile = f
	k.csvWriter = w
	return nil
}

// Events exposes the scheduler trace stream for optional consumers.
func (k *Kernel) Events() <-chan Event { return k.events }

// Run drives the kernel: every timer IRQ preempts the running task and
// runs one scheduling round, and trace events are drained to the log and
// the CSV mirror. Returns when ctx is done.
func (k *Kernel) Run(ctx context.Context) error {
	k.timer.Start(time.Duration(k.cfg.TickMS) * time.Millisecond)
	defer k.timer.Stop()

	for {
		select {
		case <-ctx.Done():
			k.flushTrace()
			return nil
		case <-k.timer.IRQ:
			k.Tick()
		case ev := <-k.events:
			k.trace(ev)
		}
	}
}

// Tick is the timer-interrupt entry point: suspend the running task, if
// any, and run one scheduling round.
func (k *Kernel) Tick() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.proc.Current(); !ok {
		// idle core: a spawn may have made a task ready
		k.dispatch()
		return
	}
	k.suspendCurrent()
	k.dispatch()
}

// suspendCurrent moves the running task back to the ready queue with its
// stride advanced by exactly one pass. Called with the transition lock
// held.
func (k *Kernel) suspendCurrent() {
	t, ok := k.proc.TakeCurrent()
	if !ok {
		return
	}
	t.AdvanceStride()
	t.Status = task.StatusReady
	k.ready.Insert(t)
	k.emit(EventSuspend, t.Pid, uint64(t.Stride()))
	k.sw.Switch(t.Context(), k.proc.IdleContext())
}

// dispatch installs the minimum-stride task, or parks the processor in its
// idle context when the queue is empty. Called with the transition lock
// held.
func (k *Kernel) dispatch() {
	next, ok := k.ready.FetchNext()
	if !ok {
		k.emit(EventIdle, 0, 0)
		return
	}
	k.proc.SetCurrent(next)
	next.MarkScheduled(k.timer.Now())
	k.emit(EventDispatch, next.Pid, uint64(next.Stride()))
	k.sw.Switch(k.proc.IdleContext(), next.Context())
}

// liveTasks counts tasks the kernel is holding resources for: queued plus
// current. Zombies are already released.
func (k *Kernel) liveTasks() int {
	n := k.ready.Len()
	if _, ok := k.proc.Current(); ok {
		n++
	}
	return n
}

// countSyscall charges a syscall to the calling task, when there is one.
func (k *Kernel) countSyscall(id int) {
	if t, ok := k.proc.Current(); ok {
		t.CountSyscall(id)
	}
}

// emit queues a trace event. Tracing must never block a transition, so
// the event is dropped when nobody drains the channel.
func (k *Kernel) emit(kind EventKind, pid task.Pid, stride uint64) {
	ev := Event{
		Time:   time.Now(),
		Tick:   k.timer.Now(),
		Kind:   kind,
		Pid:    pid,
		Stride: stride,
	}
	select {
	case k.events <- ev:
	default:
	}
}

func (k *Kernel) trace(ev Event) {
	k.log.Debug("sched",
		"tick", ev.Tick,
		"event", ev.Kind.String(),
		"pid", int64(ev.Pid),
		"stride", ev.Stride,
	)
	if k.csvWriter != nil {
		k.csvWriter.Write([]string{
			ev.Time.Format(time.RFC3339Nano),
			strconv.FormatInt(ev.Tick, 10),
			ev.Kind.String(),
			strconv.FormatInt(int64(ev.Pid), 10),
			strconv.FormatUint(ev.Stride, 10),
		})
		k.csvWriter.Flush()
	}
}

func (k *Kernel) flushTrace() {
	for {
		select {
		case ev := <-k.events:
			k.trace(ev)
		default:
			if k.csvFile != nil {
				k.csvWriter.Flush()
				k.csvFile.Close()
				k.csvFile = nil
			}
			return
		}
	}
}
