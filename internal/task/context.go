package task

// TaskContext is the callee-saved register state used to enter a task or
// the scheduling loop. The fields stand in for the register file the real
// context-switch primitive would save and restore.
type TaskContext struct {
	RA uintptr
	SP uintptr
	S  [12]uintptr
}

// TrapContext is the user-mode register snapshot restored on trap return.
type TrapContext struct {
	Entry    uint64
	UserSP   uint64
	KernelSP uint64
}

// Switcher is the context-switch collaborator: save the live registers
// into from, restore out of to.
type Switcher interface {
	Switch(from, to *TaskContext)
}

// NopSwitcher records switches without transferring control. It stands in
// for the assembly primitive in tests and the demo binary.
type NopSwitcher struct {
	Switches int
}

func (s *NopSwitcher) Switch(from, to *TaskContext) { s.Switches++ }
