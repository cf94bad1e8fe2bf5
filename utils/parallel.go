package utils

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ParallelFactor controls the max level of parallelization. This might be useful to set in tests
// where too much parallelism actually slows tests down in aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
	quarterProcs := float64(ParallelFactor) * .25
	if quarterProcs > 8 {
		ParallelFactor = int(quarterProcs)
	}
}

// GroupWorkFunc handles the work items [from, to) of one group.
type GroupWorkFunc func(groupNum, from, to int)

// GroupWorkParallel splits totalSize work items into at most ParallelFactor contiguous groups
// and runs them concurrently. It returns once every group is done. Panicking groups are reported
// as errors.
func GroupWorkParallel(totalSize int, groupWork GroupWorkFunc) error {
	if totalSize <= 0 {
		return nil
	}
	numGroups := ParallelFactor
	if numGroups > totalSize {
		numGroups = totalSize
	}
	groupSize := totalSize / numGroups
	extra := totalSize % numGroups

	var (
		wait  sync.WaitGroup
		errMu sync.Mutex
		err   error
	)
	wait.Add(numGroups)
	from := 0
	for groupNum := 0; groupNum < numGroups; groupNum++ {
		to := from + groupSize
		if groupNum < extra {
			to++
		}
		go func(groupNum, from, to int) {
			defer wait.Done()
			defer func() {
				if thePanic := recover(); thePanic != nil {
					errMu.Lock()
					err = multierr.Append(err, errors.Errorf("group %d panicked: %v", groupNum, thePanic))
					errMu.Unlock()
				}
			}()
			groupWork(groupNum, from, to)
		}(groupNum, from, to)
		from = to
	}
	wait.Wait()
	return err
}
