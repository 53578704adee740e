package kernel

import (
	"fmt"

	"strideos/internal/mm"
	"strideos/internal/task"
)

// Syscall numbers, for per-task bookkeeping.
const (
	SysExit        = 93
	SysYield       = 124
	SysSetPriority = 140
	SysMunmap      = 215
	SysMmap        = 222
	SysWaitpid     = 260
	SysSpawn       = 400
	SysTaskInfo    = 410
)

// Spawn creates a task from a fresh program image and publishes it to the
// ready queue with stride zero. It returns the child pid as soon as the
// child is queued; it never waits for the child to run and never touches
// the caller's address space. On failure no descriptor is created and no
// pid is consumed.
func (k *Kernel) Spawn(image string) (task.Pid, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.countSyscall(SysSpawn)

	if k.liveTasks() >= k.cfg.MaxTasks {
		return 0, fmt.Errorf("%w: task limit %d reached", ErrResourceExhausted, k.cfg.MaxTasks)
	}
	space, trapCtx, err := k.images.Load(image)
	if err != nil {
		return 0, err
	}
	stack, err := k.stacks.Alloc()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrResourceExhausted, err)
	}

	pid := k.pids.Alloc()
	t, err := task.New(pid, k.cfg.DefaultPriority, stack, space, trapCtx)
	if err != nil {
		// default priority is validated when the config loads; getting
		// here means the kernel was built with a bad Config by hand
		k.stacks.Free(stack)
		return 0, err
	}
	k.ready.Insert(t)
	k.emit(EventSpawn, pid, 0)
	k.log.Debug("spawn", "pid", int64(pid), "image", image)
	return pid, nil
}

// Yield suspends the calling task and dispatches the next minimum-stride
// task. With nothing else ready the caller is simply resumed.
func (k *Kernel) Yield() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.countSyscall(SysYield)

	k.suspendCurrent()
	k.dispatch()
}

// Exit terminates the calling task. The descriptor is reduced to an exit
// code awaiting collection; the task's stride is not advanced and it is
// never reinserted into the ready queue.
func (k *Kernel) Exit(code int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.countSyscall(SysExit)

	t, ok := k.proc.TakeCurrent()
	if !ok {
		k.log.Warn("exit with no current task", "code", code)
		return
	}
	t.Status = task.StatusZombie
	t.ExitCode = code
	k.stacks.Free(t.KernelStack)
	k.zombies[t.Pid] = code
	k.emit(EventExit, t.Pid, uint64(t.Stride()))
	k.log.Debug("exit", "pid", int64(t.Pid), "code", code)
	k.sw.Switch(t.Context(), k.proc.IdleContext())
	k.dispatch()
}

// Wait collects a zombie's exit code. Collection releases the last trace
// of the pid; a second Wait, or any other pid-addressed syscall, fails
// with ErrNoSuchTask.
func (k *Kernel) Wait(pid task.Pid) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.countSyscall(SysWaitpid)

	if code, ok := k.zombies[pid]; ok {
		delete(k.zombies, pid)
		return code, nil
	}
	if k.isLive(pid) {
		return 0, fmt.Errorf("%w: pid %d", ErrStillRunning, pid)
	}
	return 0, fmt.Errorf("%w: pid %d", ErrNoSuchTask, pid)
}

// SetPriority changes a live task's priority, recomputing its pass
// immediately so the next scheduling decision sees it — including when
// the task currently sits in the ready queue.
func (k *Kernel) SetPriority(pid task.Pid, priority int64) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.countSyscall(SysSetPriority)

	if cur, ok := k.proc.Current(); ok && cur.Pid == pid {
		if err := cur.SetPriority(priority); err != nil {
			return err
		}
		k.emit(EventPriority, pid, uint64(cur.Stride()))
		return nil
	}
	if err := k.ready.Adjust(pid, priority); err != nil {
		return err
	}
	k.emit(EventPriority, pid, 0)
	return nil
}

// Mmap maps a region into the calling task's address space. The current
// task is the only one a memory syscall may act on; there is no path from
// here to any other task's space.
func (k *Kernel) Mmap(addr, length uint64, prot mm.Prot) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.countSyscall(SysMmap)

	t, ok := k.proc.Current()
	if !ok {
		return fmt.Errorf("%w: no task is current", ErrNoSuchTask)
	}
	return t.Space.Map(addr, length, prot)
}

// Munmap removes a region from the calling task's address space.
func (k *Kernel) Munmap(addr, length uint64) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.countSyscall(SysMunmap)

	t, ok := k.proc.Current()
	if !ok {
		return fmt.Errorf("%w: no task is current", ErrNoSuchTask)
	}
	return t.Space.Unmap(addr, length)
}

// Info is the introspection snapshot returned by TaskInfo.
type Info struct {
	Pid           task.Pid
	Status        task.Status
	SyscallCounts [task.MaxSyscall]uint32
	RunningTicks  int64 // ticks since first dispatch
}

// TaskInfo reports on the calling task. ok is false on an idle core.
func (k *Kernel) TaskInfo() (Info, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.countSyscall(SysTaskInfo)

	t, ok := k.proc.Current()
	if !ok {
		return Info{}, false
	}
	return Info{
		Pid:           t.Pid,
		Status:        t.Status,
		SyscallCounts: t.Syscalls(),
		RunningTicks:  k.timer.Now() - t.FirstScheduled(),
	}, true
}

// isLive reports whether pid is queued or current. Called with the
// transition lock held.
func (k *Kernel) isLive(pid task.Pid) bool {
	if cur, ok := k.proc.Current(); ok && cur.Pid == pid {
		return true
	}
	return k.ready.Contains(pid)
}
