package metrics

// Noop is a recorder that discards every observation.
type Noop struct{}

// NewNoop creates a new no-op recorder.
func NewNoop() *Noop {
	return &Noop{}
}

// ObserveStep discards the observation.
func (n *Noop) ObserveStep(_, _ string) {}

// ObservePoll discards the observation.
func (n *Noop) ObservePoll(_ string) {}

// ObserveTaskChange discards the observation.
func (n *Noop) ObserveTaskChange() {}

// ObserveHostRequest discards the observation.
func (n *Noop) ObserveHostRequest() {}

// ObserveHostTask discards the observation.
func (n *Noop) ObserveHostTask(_, _ string) {}
