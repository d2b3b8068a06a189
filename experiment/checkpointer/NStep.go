package checkpointer

import (
	"fmt"

	ts "github.com/samuelfneumann/ucrl/timestep"
)

// nStep implements checkpointing every N steps
type nStep struct {
	interval int
	object   Serializable // Object to save

	// filename returns the file to save the object in. Use
	// FilenameEnumerator to number the files consecutively or
	// StepFilename to name them by time step.
	filename Namer
}

// NewNStep returns a checkpointer that checkpoints every n steps.
func NewNStep(n int, object Serializable,
	filename Namer) (Checkpointer, error) {
	if n < 1 {
		return nil, fmt.Errorf("newNStep: interval must be positive, got %v",
			n)
	}
	return &nStep{
		interval: n,
		object:   object,
		filename: filename,
	}, nil
}

// Checkpoint checkpoints the Checkpointer's tracked object by calling
// its Save() method
func (n *nStep) Checkpoint(t ts.TimeStep) error {
	if t.Number%n.interval == 0 {
		return n.object.Save(n.filename(t))
	}
	return nil
}
