package worker

import (
	"errors"
	"fmt"
	"io"

	"github.com/parbench/parbench/internal/wire"
)

// Handler turns a task into a result.
type Handler func(wire.Task) wire.Result

// Serve reads tasks from r and writes results to w until r is closed.
func Serve(r io.Reader, w io.Writer) error {
	return ServeFunc(r, w, Run)
}

// ServeFunc is Serve with a custom handler. Results are written in the
// order tasks arrive. A clean end of input returns nil.
func ServeFunc(r io.Reader, w io.Writer, handle Handler) error {
	fr := wire.NewReader(r)
	fw := wire.NewWriter(w)

	for {
		task, err := fr.ReadTask()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("worker: read task: %w", err)
		}

		if err := fw.WriteResult(handle(task)); err != nil {
			return fmt.Errorf("worker: write result %d: %w", task.Ordinal, err)
		}
	}
}
