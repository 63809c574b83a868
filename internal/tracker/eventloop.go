package tracker

import (
	"sync"

	"github.com/gridforge/jobtracker/pkg/logger"
)

// eventLoop is the single worker that serializes MetadataStore
// notifications and discovery events, per §4.2: callbacks from those
// two sources must never block the caller, so they enqueue a closure
// here instead of running inline. Grounded on the teacher's
// scheduler.Scheduler.run: one goroutine draining a channel until a
// stop signal fires, logging and continuing past a panic-free error
// rather than ever dying.
type eventLoop struct {
	tasks chan func()
	done  chan struct{}

	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
	log      *logger.Logger
}

func newEventLoop(buffer int, log *logger.Logger) *eventLoop {
	if buffer <= 0 {
		buffer = 256
	}
	return &eventLoop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
		log:   log,
	}
}

func (l *eventLoop) start() {
	go l.run()
}

func (l *eventLoop) run() {
	defer close(l.done)
	for fn := range l.tasks {
		l.runOne(fn)
	}
}

func (l *eventLoop) runOne(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("event loop task panicked", "panic", r)
		}
	}()
	fn()
}

// enqueue submits fn for serialized execution. Returns false if the
// loop has already been stopped, in which case fn never runs.
func (l *eventLoop) enqueue(fn func()) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		return false
	}
	l.tasks <- fn
	return true
}

// stop closes the task queue and waits for the worker to drain it.
// Safe to call from only one goroutine; concurrent enqueue calls are
// serialized against it by mu so none races the channel close.
func (l *eventLoop) stop() {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.stopped = true
		close(l.tasks)
		l.mu.Unlock()
	})
	<-l.done
}
