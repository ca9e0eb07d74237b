package timeline

import "sync"

// FaultCollector gathers per-entity faults during a pass.
// It is safe for concurrent use.
type FaultCollector struct {
	mu     sync.Mutex
	faults map[string]error
}

// NewFaultCollector creates an empty collector.
func NewFaultCollector() *FaultCollector {
	return &FaultCollector{
		faults: make(map[string]error),
	}
}

// Record stores a fault for an autorizador. A later fault for the same
// entity replaces the earlier one.
func (c *FaultCollector) Record(autorizador string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faults[autorizador] = err
}

// Faults returns a copy of the collected faults keyed by autorizador.
func (c *FaultCollector) Faults() map[string]error {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]error, len(c.faults))
	for k, v := range c.faults {
		out[k] = v
	}
	return out
}
