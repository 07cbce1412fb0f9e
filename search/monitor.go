package search

import "github.com/glyphica/iconsearch/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track which path a query took and why a
// degraded mode was chosen.
type SearchMonitor interface {
	Start(query string)
	AfterCatalogFilter(candidates int)
	AfterQueryEmbedding(dimension int)
	AfterVectorSearch(hits int)
	VectorSearchFailed(err error)
	SubstringFallback(query string)
	Finish(results []core.SearchResult, mode SearchMode)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                             {}
func (n *noopMonitor) AfterCatalogFilter(_ int)                   {}
func (n *noopMonitor) AfterQueryEmbedding(_ int)                  {}
func (n *noopMonitor) AfterVectorSearch(_ int)                    {}
func (n *noopMonitor) VectorSearchFailed(_ error)                 {}
func (n *noopMonitor) SubstringFallback(_ string)                 {}
func (n *noopMonitor) Finish(_ []core.SearchResult, _ SearchMode) {}
