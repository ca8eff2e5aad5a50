package health

import "context"

// DBPinger checks record store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// WorkspaceChecker checks that the sample file root is reachable.
type WorkspaceChecker interface {
	Ping(ctx context.Context) error
}
