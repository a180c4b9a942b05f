package metrics

// Noop discards all measurements. It is the provider pools fall back to
// when none is configured.
type Noop struct{}

// NewNoop constructs a Provider that discards all metrics.
func NewNoop() Noop { return Noop{} }

func (Noop) Counter(string) Counter             { return noopInstrument{} }
func (Noop) UpDownCounter(string) UpDownCounter { return noopInstrument{} }
func (Noop) Histogram(string) Histogram         { return noopInstrument{} }

type noopInstrument struct{}

func (noopInstrument) Add(int64)      {}
func (noopInstrument) Record(float64) {}
