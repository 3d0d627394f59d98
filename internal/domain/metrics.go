package domain

// Recorder receives counters for handshake steps and task polling.
type Recorder interface {
	ObserveStep(step, result string)
	ObservePoll(result string)
	ObserveTaskChange()
}
