package checkpointer

import (
	"fmt"
	"path/filepath"

	ts "github.com/samuelfneumann/ucrl/timestep"
)

// Namer returns the file a checkpoint taken at a TimeStep is saved in
type Namer func(ts.TimeStep) string

// FilenameEnumerator returns a Namer which numbers checkpoints
// consecutively from start + 1, saving them in dir as
// <prefix><i><extension>
func FilenameEnumerator(dir string, start int, prefix,
	extension string) Namer {
	i := start
	return func(ts.TimeStep) string {
		i++
		return filepath.Join(dir, fmt.Sprintf("%v%v%v", prefix, i, extension))
	}
}

// StepFilename returns a Namer which names checkpoints by their time
// step, saving them in dir as <prefix><step number><extension>
func StepFilename(dir, prefix, extension string) Namer {
	return func(t ts.TimeStep) string {
		return filepath.Join(dir, fmt.Sprintf("%v%v%v", prefix, t.Number,
			extension))
	}
}
