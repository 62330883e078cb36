package node

import (
	"context"

	"github.com/gridnode/supervisor/internal/supervisor"
)

// SingleNodeRegistrySession is the RegistrySession used when a node runs
// without a replicated registry: it is always the master, so revision
// checks and replication waits are no-ops. A node wired to a real
// distributed registry substitutes a different RegistrySession.
type SingleNodeRegistrySession struct{}

var _ supervisor.RegistrySession = SingleNodeRegistrySession{}

// WaitForApplicationUpdate completes immediately: there is no replica
// lag to wait out when this node is the only registry.
func (SingleNodeRegistrySession) WaitForApplicationUpdate(ctx context.Context, application, uuid string, revision int64, cb func(err error)) {
	cb(nil)
}

// IsMaster is always true for a single-node deployment.
func (SingleNodeRegistrySession) IsMaster(replicaName string) bool {
	return true
}
