package engine

// EventSink receives session events. Calls are made synchronously from the
// goroutine driving the session and must not call back into it.
type EventSink interface {
	// OnMatchAnimate fires when a match is accepted and its removal is scheduled.
	OnMatchAnimate(path Path)
	// OnMatchCommitted fires after both tiles are removed from the grid.
	OnMatchCommitted(matchedPairs, totalPairs int)
	// OnReshuffle fires once per automatic redistribution.
	OnReshuffle(bonusAwarded int)
	// OnWin fires once, right after the last pair is committed.
	OnWin(finalScore, elapsedSeconds int)
}

// NopSink ignores every event.
type NopSink struct{}

func (NopSink) OnMatchAnimate(Path) {}
func (NopSink) OnMatchCommitted(int, int) {}
func (NopSink) OnReshuffle(int) {}
func (NopSink) OnWin(int, int) {}

// MultiSink fans events out to several sinks in order.
type MultiSink []EventSink

func (m MultiSink) OnMatchAnimate(path Path) {
	for _, s := range m {
		s.OnMatchAnimate(path)
	}
}

func (m MultiSink) OnMatchCommitted(matchedPairs, totalPairs int) {
	for _, s := range m {
		s.OnMatchCommitted(matchedPairs, totalPairs)
	}
}

func (m MultiSink) OnReshuffle(bonusAwarded int) {
	for _, s := range m {
		s.OnReshuffle(bonusAwarded)
	}
}

func (m MultiSink) OnWin(finalScore, elapsedSeconds int) {
	for _, s := range m {
		s.OnWin(finalScore, elapsedSeconds)
	}
}
