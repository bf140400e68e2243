package domain

// GeneratedCase is one set of inputs for one iteration. It belongs to that
// iteration alone and is dropped after verification.
type GeneratedCase struct {
	Iteration    int   `json:"iteration"`
	Complexity   int   `json:"complexity"`
	EdgeCase     bool  `json:"edgeCase"`
	SimpleCase   bool  `json:"simpleCase"`
	Receiver     any   `json:"receiver,omitempty"`
	Args         []any `json:"args"`
	ReceiverSeed int64 `json:"receiverSeed"`
	ArgsSeed     int64 `json:"argsSeed"`
}

// CaseSnapshot is the printable form of a GeneratedCase kept in reports.
type CaseSnapshot struct {
	Iteration    int      `json:"iteration"`
	Complexity   int      `json:"complexity"`
	EdgeCase     bool     `json:"edgeCase"`
	SimpleCase   bool     `json:"simpleCase"`
	Receiver     string   `json:"receiver,omitempty"`
	Args         []string `json:"args"`
	ReceiverSeed int64    `json:"receiverSeed"`
	ArgsSeed     int64    `json:"argsSeed"`
}

func (c GeneratedCase) Snapshot() CaseSnapshot {
	s := CaseSnapshot{
		Iteration:    c.Iteration,
		Complexity:   c.Complexity,
		EdgeCase:     c.EdgeCase,
		SimpleCase:   c.SimpleCase,
		Args:         FormatValues(c.Args),
		ReceiverSeed: c.ReceiverSeed,
		ArgsSeed:     c.ArgsSeed,
	}
	if c.Receiver != nil {
		s.Receiver = FormatValue(c.Receiver)
	}
	return s
}
