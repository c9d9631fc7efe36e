package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// taskTickMsg is delivered when a named background task's interval elapses.
// The generation stamps the timer that produced it: after a task is replaced
// or cancelled, ticks from the old timer carry a stale generation and are
// dropped, which is how "at most one live timer per name" is enforced on top
// of tea.Tick (bubbletea timers cannot be cancelled directly).
type taskTickMsg struct {
	name string
	gen  uint64
}

type scheduledTask struct {
	interval  time.Duration
	gen       uint64
	predicate func() bool
	action    func() tea.Cmd
}

// refreshScheduler owns the console's periodic background work: dashboard
// polling, collection-status polling and backend health probes. Tasks are
// keyed by name; scheduling under an existing name replaces the prior timer.
type refreshScheduler struct {
	tasks map[string]*scheduledTask
	gen   uint64
}

func newRefreshScheduler() *refreshScheduler {
	return &refreshScheduler{tasks: make(map[string]*scheduledTask)}
}

// Schedule installs (or replaces) the named task and returns the command
// that arms its first tick.
func (s *refreshScheduler) Schedule(name string, interval time.Duration, predicate func() bool, action func() tea.Cmd) tea.Cmd {
	s.gen++
	task := &scheduledTask{
		interval:  interval,
		gen:       s.gen,
		predicate: predicate,
		action:    action,
	}
	s.tasks[name] = task
	return s.tick(name, task)
}

// HandleTick processes one timer firing. It returns the task's action
// command (nil when the tick is stale, the task was cancelled, or the
// predicate gated it off) and the command arming the next tick. A skipped
// tick still re-arms; only cancellation stops the loop.
func (s *refreshScheduler) HandleTick(msg taskTickMsg) (action tea.Cmd, next tea.Cmd) {
	task, ok := s.tasks[msg.name]
	if !ok || task.gen != msg.gen {
		return nil, nil
	}
	next = s.tick(msg.name, task)
	if task.predicate != nil && !task.predicate() {
		return nil, next
	}
	if task.action == nil {
		return nil, next
	}
	return task.action(), next
}

// Cancel drops the named task; in-flight ticks for it become stale.
func (s *refreshScheduler) Cancel(name string) {
	delete(s.tasks, name)
}

// CancelAll clears every task. Invoked on console teardown so no background
// work survives the session.
func (s *refreshScheduler) CancelAll() {
	s.tasks = make(map[string]*scheduledTask)
}

// Active reports whether a task is currently installed under name.
func (s *refreshScheduler) Active(name string) bool {
	_, ok := s.tasks[name]
	return ok
}

func (s *refreshScheduler) tick(name string, task *scheduledTask) tea.Cmd {
	gen := task.gen
	return tea.Tick(task.interval, func(time.Time) tea.Msg {
		return taskTickMsg{name: name, gen: gen}
	})
}

// currentTick fabricates a tick message for the live timer of the named
// task. Test hook: lets tests drive the schedule without sleeping.
func (s *refreshScheduler) currentTick(name string) (taskTickMsg, bool) {
	task, ok := s.tasks[name]
	if !ok {
		return taskTickMsg{}, false
	}
	return taskTickMsg{name: name, gen: task.gen}, true
}
