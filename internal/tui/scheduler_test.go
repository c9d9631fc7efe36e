package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestSchedulerReplaceInvalidatesOldTimer(t *testing.T) {
	s := newRefreshScheduler()
	fired := 0
	action := func() tea.Cmd {
		fired++
		return nil
	}
	if cmd := s.Schedule("poll", time.Minute, nil, action); cmd == nil {
		t.Fatalf("expected arming command")
	}
	firstTick, ok := s.currentTick("poll")
	if !ok {
		t.Fatalf("expected live timer after schedule")
	}

	// Rescheduling under the same name must orphan the first timer.
	if cmd := s.Schedule("poll", time.Minute, nil, action); cmd == nil {
		t.Fatalf("expected arming command on reschedule")
	}
	if action, _ := s.HandleTick(firstTick); action != nil {
		t.Fatalf("stale tick must not produce an action")
	}
	if fired != 0 {
		t.Fatalf("stale tick fired the action %d times", fired)
	}

	liveTick, ok := s.currentTick("poll")
	if !ok {
		t.Fatalf("expected live timer after reschedule")
	}
	action2, next := s.HandleTick(liveTick)
	if action2 == nil {
		t.Fatalf("live tick must produce the action")
	}
	action2()
	if fired != 1 {
		t.Fatalf("expected exactly one firing, got %d", fired)
	}
	if next == nil {
		t.Fatalf("live tick must re-arm the timer")
	}
}

func TestSchedulerPredicateGatesActionButReArms(t *testing.T) {
	s := newRefreshScheduler()
	allowed := false
	fired := 0
	s.Schedule("gated", time.Minute, func() bool { return allowed }, func() tea.Cmd {
		fired++
		return nil
	})

	tick, _ := s.currentTick("gated")
	action, next := s.HandleTick(tick)
	if action != nil {
		t.Fatalf("gated tick must not produce an action")
	}
	if next == nil {
		t.Fatalf("gated tick must still re-arm")
	}
	if fired != 0 {
		t.Fatalf("predicate=false still fired the action")
	}

	allowed = true
	tick, _ = s.currentTick("gated")
	action, _ = s.HandleTick(tick)
	if action == nil {
		t.Fatalf("expected action once predicate passes")
	}
	action()
	if fired != 1 {
		t.Fatalf("expected one firing, got %d", fired)
	}
}

func TestSchedulerCancelAllStopsEverything(t *testing.T) {
	s := newRefreshScheduler()
	s.Schedule("a", time.Minute, nil, func() tea.Cmd { return nil })
	s.Schedule("b", time.Minute, nil, func() tea.Cmd { return nil })
	tickA, _ := s.currentTick("a")
	tickB, _ := s.currentTick("b")

	s.CancelAll()
	if s.Active("a") || s.Active("b") {
		t.Fatalf("tasks survive CancelAll")
	}
	if action, next := s.HandleTick(tickA); action != nil || next != nil {
		t.Fatalf("cancelled task produced work")
	}
	if action, next := s.HandleTick(tickB); action != nil || next != nil {
		t.Fatalf("cancelled task produced work")
	}
}

func TestSchedulerCancelSingleTask(t *testing.T) {
	s := newRefreshScheduler()
	s.Schedule("keep", time.Minute, nil, func() tea.Cmd { return nil })
	s.Schedule("drop", time.Minute, nil, func() tea.Cmd { return nil })
	dropTick, _ := s.currentTick("drop")

	s.Cancel("drop")
	if s.Active("drop") {
		t.Fatalf("cancelled task still active")
	}
	if !s.Active("keep") {
		t.Fatalf("unrelated task was cancelled")
	}
	if action, next := s.HandleTick(dropTick); action != nil || next != nil {
		t.Fatalf("cancelled task produced work")
	}
}
