package ports

import "github.com/Catneko-0422/tuerulebase/pkg/domain"

// TreeReader is the read-only view of the node forest the decoder walks.
// Implementations must be safe to read for the whole duration of a decode
// and must not change underneath it.
type TreeReader interface {
	// Roots returns every node without a parent, in store order.
	Roots() []domain.Node

	// Children returns the children of nodeID ordered by sort order.
	// When excludeOptions is set, OPTION nodes are left out.
	Children(nodeID int64, excludeOptions bool) []domain.Node

	// Options returns the OPTION children of a STATIC node.
	Options(staticID int64) []domain.Node

	// Node looks up a single node by id.
	Node(id int64) (domain.Node, bool)
}
