package scheduler

import "sync"

// Command is a deferred world mutation queued by a system body and
// applied after the parallel pass completes, when exclusive world access
// is available again.
type Command func(w World, r Resources) error

// CommandBuffer accumulates a system's deferred commands across one
// RunUnsafe call. Push may be called concurrently with other systems'
// buffers but never concurrently with its own Apply.
type CommandBuffer struct {
	mu       sync.Mutex
	commands []Command
}

// NewCommandBuffer returns an empty buffer.
func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{}
}

// Push appends cmd to the buffer. A nil cmd is ignored.
func (b *CommandBuffer) Push(cmd Command) {
	if cmd == nil {
		return
	}
	b.mu.Lock()
	b.commands = append(b.commands, cmd)
	b.mu.Unlock()
}

// Len reports how many commands are queued.
func (b *CommandBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.commands)
}

// Apply runs every queued command in insertion order against w/r, then
// resets the buffer. It stops and returns the first error encountered,
// leaving any remaining commands unapplied and discarded.
func (b *CommandBuffer) Apply(w World, r Resources) error {
	b.mu.Lock()
	cmds := b.commands
	b.commands = nil
	b.mu.Unlock()
	for _, cmd := range cmds {
		if err := cmd(w, r); err != nil {
			return err
		}
	}
	return nil
}
