// Package progress defines the structured progress surface the core exposes
// to the UI. Events carry a stage, a percentage, and a human-readable message;
// they never carry plaintext or key material.
package progress

// Stage identifies the phase of a long-running cryptographic operation.
type Stage string

const (
	StageDeriveKey Stage = "derive_key"
	StageWrapKey   Stage = "wrap_key"
	StageUnwrapKey Stage = "unwrap_key"
	StageEncrypt   Stage = "encrypt"
	StageDecrypt   Stage = "decrypt"
	StageStore     Stage = "store"
	StageComplete  Stage = "complete"
)

// Event is a single progress update.
type Event struct {
	Stage   Stage  `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// Reporter consumes progress events.
type Reporter interface {
	Report(event Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(event Event)

// Report calls f(event).
func (f ReporterFunc) Report(event Event) {
	f(event)
}

// Nop returns a Reporter that discards all events.
func Nop() Reporter {
	return ReporterFunc(func(Event) {})
}

// Monotonic wraps a Reporter so the reported percentage never decreases.
// Stages may interleave with slightly out-of-order percentages; the UI
// contract is a monotonic bar.
func Monotonic(next Reporter) Reporter {
	if next == nil {
		next = Nop()
	}
	m := &monotonicReporter{next: next}
	return m
}

type monotonicReporter struct {
	next Reporter
	high int
}

func (m *monotonicReporter) Report(event Event) {
	if event.Percent < m.high {
		event.Percent = m.high
	} else {
		m.high = event.Percent
	}
	m.next.Report(event)
}
