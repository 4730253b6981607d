package query

// Monitor provides hooks to observe the question pipeline.
// Implement this interface to track intermediate stages and results.
type Monitor interface {
	Start(documentID, question string)
	AfterVectorRetrieval(contextText string)
	AfterInitialAnswer(answer string)
	AfterGraphRetrieval(contextText string)
	Finish(answer string)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)             {}
func (n *noopMonitor) AfterVectorRetrieval(_ string) {}
func (n *noopMonitor) AfterInitialAnswer(_ string)   {}
func (n *noopMonitor) AfterGraphRetrieval(_ string)  {}
func (n *noopMonitor) Finish(_ string)               {}
