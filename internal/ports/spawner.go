package ports

import "context"

// Spawner launches the successor watchdog process carrying attempt as its
// index. It must not wait for the child.
type Spawner interface {
	Spawn(ctx context.Context, attempt int) error
}
