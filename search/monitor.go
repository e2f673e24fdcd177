package search

import "github.com/poiesic/productfinder/core"

// FindMonitor provides hooks to observe the find process.
// Implement this interface to inspect the generated query and the hits
// before and after ranking.
type FindMonitor interface {
	Start(text string, query core.QueryOptions)
	AfterSearch(hits []*core.Document)
	Failed(err error)
	Finish(ranked []*core.Document)
}

// noopMonitor is a no-op implementation of FindMonitor
type noopMonitor struct{}

var _ FindMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.QueryOptions) {}
func (n *noopMonitor) AfterSearch(_ []*core.Document)      {}
func (n *noopMonitor) Failed(_ error)                      {}
func (n *noopMonitor) Finish(_ []*core.Document)           {}
