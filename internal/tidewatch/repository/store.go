package repository

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tidewatch/tidewatch/internal/common/logging"
	"github.com/tidewatch/tidewatch/internal/common/tidewatcherrors"
	"github.com/tidewatch/tidewatch/internal/common/util"
)

// StoreSnapshot is one immutable load of the jobs sheet. Jobs must not be
// mutated after the snapshot is published.
type StoreSnapshot struct {
	LoadId      string
	Jobs        []Job
	LastUpdated time.Time
}

// JobStore holds the most recent snapshot of the jobs sheet and swaps in a
// new one on every reload. A failed load still produces a snapshot, with no
// jobs, so readers always see the outcome of the latest load attempt.
type JobStore struct {
	reader RowReader
	clock  util.Clock

	mutex    sync.RWMutex
	snapshot StoreSnapshot
}

func NewJobStore(reader RowReader, clock util.Clock) *JobStore {
	return &JobStore{
		reader: reader,
		clock:  clock,
		snapshot: StoreSnapshot{
			Jobs: []Job{},
		},
	}
}

// Reload reads all rows from the source and replaces the current snapshot.
// Read failures are not propagated to readers of the store: the snapshot is
// replaced with an empty one and the error is returned for reporting only.
func (store *JobStore) Reload() error {
	loadTime := store.clock.Now()

	rows, err := store.reader.ReadRows()
	if err != nil {
		var unavailable *tidewatcherrors.ErrSourceUnavailable
		if errors.As(err, &unavailable) {
			log.Warnf("jobs source not found, continuing with no jobs: %s", err)
		} else {
			logging.WithStacktrace(log.NewEntry(log.StandardLogger()), err).
				Error("failed to load jobs from source, continuing with no jobs")
		}
		store.publish(StoreSnapshot{
			LoadId:      util.NewULID(),
			Jobs:        []Job{},
			LastUpdated: loadTime,
		})
		return err
	}

	jobs := make([]Job, 0, len(rows))
	for i, row := range rows {
		jobs = append(jobs, BuildJob(row, i, loadTime))
	}
	store.publish(StoreSnapshot{
		LoadId:      util.NewULID(),
		Jobs:        jobs,
		LastUpdated: loadTime,
	})
	log.Infof("loaded %d jobs from source", len(jobs))
	return nil
}

// Snapshot returns the most recent snapshot. Before the first reload it
// contains no jobs and a zero LastUpdated.
func (store *JobStore) Snapshot() StoreSnapshot {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	return store.snapshot
}

func (store *JobStore) publish(snapshot StoreSnapshot) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.snapshot = snapshot
}

func (store *JobStore) GetJobsLoaded() int {
	return len(store.Snapshot().Jobs)
}

func (store *JobStore) GetLastReloadTime() time.Time {
	return store.Snapshot().LastUpdated
}
