package inject

import (
	"context"
	"time"

	"go.viam.com/stereomesh/components/camera/stereo"
)

// StereoDevice is an injected stereo device.
type StereoDevice struct {
	stereo.Device
	OpenStreamFunc        func(ctx context.Context) (stereo.Stream, error)
	ComponentOfPartFunc   func(buf *stereo.Buffer, part int) (string, error)
	KeepAliveIntervalFunc func() time.Duration
	CloseFunc             func(ctx context.Context) error

	GetEnumFunc   func(name string) (string, []string, error)
	SetEnumFunc   func(name, v string) error
	GetStringFunc func(name string) (string, error)
	GetFloatFunc  func(name string) (float64, error)
}

// OpenStream calls the injected OpenStream or the real version.
func (d *StereoDevice) OpenStream(ctx context.Context) (stereo.Stream, error) {
	if d.OpenStreamFunc == nil {
		return d.Device.OpenStream(ctx)
	}
	return d.OpenStreamFunc(ctx)
}

// ComponentOfPart calls the injected ComponentOfPart or the real version.
func (d *StereoDevice) ComponentOfPart(buf *stereo.Buffer, part int) (string, error) {
	if d.ComponentOfPartFunc == nil {
		return d.Device.ComponentOfPart(buf, part)
	}
	return d.ComponentOfPartFunc(buf, part)
}

// KeepAliveInterval calls the injected KeepAliveInterval or the real version.
func (d *StereoDevice) KeepAliveInterval() time.Duration {
	if d.KeepAliveIntervalFunc == nil {
		return d.Device.KeepAliveInterval()
	}
	return d.KeepAliveIntervalFunc()
}

// Close calls the injected Close or the real version.
func (d *StereoDevice) Close(ctx context.Context) error {
	if d.CloseFunc == nil {
		if d.Device == nil {
			return nil
		}
		return d.Device.Close(ctx)
	}
	return d.CloseFunc(ctx)
}

// GetEnum calls the injected GetEnum or the real version.
func (d *StereoDevice) GetEnum(name string) (string, []string, error) {
	if d.GetEnumFunc == nil {
		return d.Device.GetEnum(name)
	}
	return d.GetEnumFunc(name)
}

// SetEnum calls the injected SetEnum or the real version.
func (d *StereoDevice) SetEnum(name, v string) error {
	if d.SetEnumFunc == nil {
		return d.Device.SetEnum(name, v)
	}
	return d.SetEnumFunc(name, v)
}

// GetString calls the injected GetString or the real version.
func (d *StereoDevice) GetString(name string) (string, error) {
	if d.GetStringFunc == nil {
		return d.Device.GetString(name)
	}
	return d.GetStringFunc(name)
}

// GetFloat calls the injected GetFloat or the real version.
func (d *StereoDevice) GetFloat(name string) (float64, error) {
	if d.GetFloatFunc == nil {
		return d.Device.GetFloat(name)
	}
	return d.GetFloatFunc(name)
}

// StereoStream is an injected stereo stream.
type StereoStream struct {
	stereo.Stream
	GrabFunc  func(ctx context.Context, timeout time.Duration) (*stereo.Buffer, error)
	CloseFunc func(ctx context.Context) error
}

// Grab calls the injected Grab or the real version.
func (s *StereoStream) Grab(ctx context.Context, timeout time.Duration) (*stereo.Buffer, error) {
	if s.GrabFunc == nil {
		return s.Stream.Grab(ctx, timeout)
	}
	return s.GrabFunc(ctx, timeout)
}

// Close calls the injected Close or the real version.
func (s *StereoStream) Close(ctx context.Context) error {
	if s.CloseFunc == nil {
		if s.Stream == nil {
			return nil
		}
		return s.Stream.Close(ctx)
	}
	return s.CloseFunc(ctx)
}
