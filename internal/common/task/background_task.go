package task

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type task struct {
	run      func()
	interval time.Duration
	name     string
	stop     chan struct{}
}

// BackgroundTaskManager runs registered functions on fixed intervals and
// records their latency under the given metrics prefix. Register and StopAll
// must be called from a single goroutine.
type BackgroundTaskManager struct {
	tasks            []*task
	latencyHistogram *prometheus.HistogramVec
	wg               sync.WaitGroup
}

func NewBackgroundTaskManager(metricsPrefix string) *BackgroundTaskManager {
	return &BackgroundTaskManager{
		latencyHistogram: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricsPrefix + "background_task_latency_seconds",
				Help:    "Background task latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
			},
			[]string{"task"}),
	}
}

// Register schedules run to execute every interval, starting immediately.
// The name labels the task's latency observations.
func (m *BackgroundTaskManager) Register(run func(), interval time.Duration, name string) {
	t := &task{
		run:      run,
		interval: interval,
		name:     name,
		stop:     make(chan struct{}),
	}
	m.tasks = append(m.tasks, t)
	m.wg.Add(1)
	go m.loop(t)
}

func (m *BackgroundTaskManager) loop(t *task) {
	defer m.wg.Done()
	observer := m.latencyHistogram.WithLabelValues(t.name)
	timed := func() {
		start := time.Now()
		t.run()
		observer.Observe(time.Since(start).Seconds())
	}

	timed()
	for {
		select {
		case <-time.After(t.interval):
			timed()
		case <-t.stop:
			return
		}
	}
}

// StopAll signals every task to stop, then waits for in-flight runs to
// finish. It reports true if timeout expired before they all did.
func (m *BackgroundTaskManager) StopAll(timeout time.Duration) bool {
	for _, t := range m.tasks {
		close(t.stop)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.wg.Wait()
	}()
	select {
	case <-done:
		return false
	case <-time.After(timeout):
		return true
	}
}
