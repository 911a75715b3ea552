// Package workers runs the client's background loops: the connectivity
// prober and the periodic sync job. The Workers aggregate owns their
// lifecycle so the application wires and stops them as one unit.
package workers

import "context"

// Worker is a single background loop. Run blocks until ctx is cancelled;
// the aggregate gives every worker its own goroutine.
type Worker interface {
	Run(ctx context.Context)
}
