// Package stereo defines the narrow interface to a network stereo camera: a string keyed
// parameter registry plus a stream of multi-part buffers.
package stereo

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/stereomesh/rimage"
)

// Logical component names a device reports for buffer parts.
const (
	ComponentIntensity  = "Intensity"
	ComponentDisparity  = "Disparity"
	ComponentConfidence = "Confidence"
)

// ErrParameterUnavailable marks a parameter the device does not have or cannot access now.
var ErrParameterUnavailable = errors.New("parameter unavailable")

// NewParameterUnavailableError is used when name cannot be read or written.
func NewParameterUnavailableError(name string) error {
	return errors.Wrapf(ErrParameterUnavailable, "%q", name)
}

// ParameterRegistry is typed access to the device's named parameters. Implementations need not
// be safe for concurrent use.
type ParameterRegistry interface {
	IsWritable(name string) (bool, error)

	GetBoolean(name string) (bool, error)
	SetBoolean(name string, v bool) error

	// GetEnum returns the current entry and every entry the enum allows.
	GetEnum(name string) (string, []string, error)
	SetEnum(name, v string) error

	GetFloat(name string) (float64, error)
	SetFloat(name string, v float64) error

	GetInteger(name string) (int64, error)
	SetInteger(name string, v int64) error

	GetString(name string) (string, error)
	SetString(name, v string) error

	ExecuteCommand(name string) error
}

// Stream delivers buffers from an opened device.
type Stream interface {
	// Grab waits up to timeout for the next buffer. A nil buffer with a nil error means the
	// timeout elapsed.
	Grab(ctx context.Context, timeout time.Duration) (*Buffer, error)
	Close(ctx context.Context) error
}

// Device is a stereo camera.
type Device interface {
	ParameterRegistry

	OpenStream(ctx context.Context) (Stream, error)
	// ComponentOfPart names the logical component carried by part of buf.
	ComponentOfPart(buf *Buffer, part int) (string, error)
	// KeepAliveInterval is the negotiated heartbeat period, or 0 if the device has none.
	KeepAliveInterval() time.Duration
	Close(ctx context.Context) error
}

// Part is one section of a multi-part buffer.
type Part struct {
	// ComponentID is the device specific id the device maps back to a component name.
	ComponentID int
	// Image is nil for parts that carry no image data.
	Image *rimage.RawImage
}

// Buffer is one transfer from the device.
type Buffer struct {
	Parts []Part
	// Incomplete is set when part of the transfer was lost.
	Incomplete bool
}

// PartIndex returns the index of the first part of componentID carrying an image, or -1.
func (buf *Buffer) PartIndex(componentID int) int {
	for i, p := range buf.Parts {
		if p.ComponentID == componentID && p.Image != nil {
			return i
		}
	}
	return -1
}
