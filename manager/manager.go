package manager

import (
	"context"

	"github.com/forgekit/forgekit/settings"
)

// Manager is a lifecycle-managed subsystem. Start and Stop are each called
// at most once per process, in the declared order; a manager may assume that
// every manager declared before it is already running when Start is called.
type Manager interface {
	// Name returns the unique name of the manager for registration.
	Name() string

	// Start initializes the subsystem against the finalized runtime
	// configuration.
	Start(ctx context.Context, cfg *settings.RuntimeConfig) error

	// Stop gracefully shuts down the subsystem and releases resources.
	Stop(ctx context.Context) error
}

// Capable is optionally implemented by managers to register under one or
// more named capability tags, giving O(1) typed lookup without reflection.
type Capable interface {
	Capabilities() []string
}

// Capability tags for the fixed subsystem set, in declared start order.
const (
	CapRuntime        = "runtime"
	CapNotification   = "notification"
	CapUser           = "user"
	CapAuthentication = "authentication"
	CapRepository     = "repository"
	CapProject        = "project"
	CapAggregate      = "aggregate"
	CapFederation     = "federation"
	CapServices       = "services"
)

// StartOrder is the declared startup sequence. The runtime manager is first
// because it supplies the resolved base folder and version/status fields the
// other managers may read during their own startup.
var StartOrder = []string{
	CapRuntime,
	CapNotification,
	CapUser,
	CapAuthentication,
	CapRepository,
	CapProject,
	CapAggregate,
	CapFederation,
	CapServices,
}

// State is the lifecycle state of a registered manager.
type State int

const (
	Unstarted State = iota
	Starting
	Running
	Stopping
	Stopped
	Failed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// orderRank returns the declared-order rank of a manager, derived from its
// first recognized capability. Managers without a recognized capability rank
// after all declared ones, keeping their relative registration order.
func orderRank(m Manager) int {
	c, ok := m.(Capable)
	if !ok {
		return len(StartOrder)
	}
	for _, tag := range c.Capabilities() {
		for i, declared := range StartOrder {
			if tag == declared {
				return i
			}
		}
	}
	return len(StartOrder)
}

// SortByDeclaredOrder stably sorts managers into the declared start order.
func SortByDeclaredOrder(managers []Manager) {
	// Insertion sort keeps the sort stable for equal ranks.
	for i := 1; i < len(managers); i++ {
		for j := i; j > 0 && orderRank(managers[j]) < orderRank(managers[j-1]); j-- {
			managers[j], managers[j-1] = managers[j-1], managers[j]
		}
	}
}
