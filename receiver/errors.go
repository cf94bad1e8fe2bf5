package receiver

import (
	"github.com/pkg/errors"
)

var (
	// ErrSynchronizationFailed ends acquisition when no pair matched within the idle timeout.
	ErrSynchronizationFailed = errors.New("stereo streams failed to synchronize")
	// ErrConnectionLost ends acquisition when the device stopped answering.
	ErrConnectionLost = errors.New("connection to stereo device lost")
	// ErrClosed is returned by parameter access after the receiver was closed.
	ErrClosed = errors.New("receiver is closed")
)

func newConnectionLostError(op string, cause error) error {
	return errors.Wrapf(ErrConnectionLost, "%s: %v", op, cause)
}
