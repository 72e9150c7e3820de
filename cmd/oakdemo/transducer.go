package main

import (
	"time"

	"github.com/haricheung/oak"
)

// counterEvent is the event alphabet oakdemo's REPL feeds into the
// running transducer, one per input line.
type counterEvent struct {
	kind          eventKind
	correlationID string
	delay         time.Duration
}

type eventKind int

const (
	eventInc eventKind = iota
	eventDec
	eventCancelWait
	eventStop
	eventWait
)

// counterState is a small counter that becomes terminal once stopped.
type counterState struct {
	count   int
	stopped bool
}

func (s counterState) IsTerminal() bool { return s.stopped }

// counterOutput is emitted once per cycle.
type counterOutput struct {
	correlationID string
	count         int
}

// waitTaskID is the single slot DelayedEmitEvent("wait") occupies;
// starting a new wait cancels whichever one is already pending.
const waitTaskID = "pending-wait"

func updateCounter(s *counterState, e counterEvent, _ struct{}) (*oak.Effect[counterEvent, struct{}], counterOutput) {
	switch e.kind {
	case eventInc:
		s.count++
	case eventDec:
		s.count--
	case eventCancelWait:
		return oak.CancelEffect[counterEvent, struct{}](waitTaskID), counterOutput{correlationID: e.correlationID, count: s.count}
	case eventStop:
		s.stopped = true
	case eventWait:
		delayed := oak.DelayedEmitEventEffect[counterEvent, struct{}](
			waitTaskID, oak.EffectExecSystem, e.delay, 0,
			counterEvent{kind: eventInc, correlationID: e.correlationID},
		)
		return delayed, counterOutput{correlationID: e.correlationID, count: s.count}
	}
	return nil, counterOutput{correlationID: e.correlationID, count: s.count}
}
