// Package receiver synchronizes the intensity and disparity streams of a stereo camera into
// matched pairs.
package receiver

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"go.viam.com/stereomesh/components/camera/stereo"
	"go.viam.com/stereomesh/logging"
	"go.viam.com/stereomesh/rimage"
	"go.viam.com/stereomesh/rimage/transform"
	"go.viam.com/stereomesh/utils"
)

const (
	exposureLine        = "Out1"
	lineSourceAlternate = "ExposureAlternateActive"
	outputModeDisparity = "DisparityC"
)

var _ stereo.ParameterRegistry = (*Receiver)(nil)

// Sink receives every matched pair. Process is called on the acquisition goroutine and must
// not block.
type Sink interface {
	Process(pair *transform.StereoPair)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(pair *transform.StereoPair)

// Process calls f(pair).
func (f SinkFunc) Process(pair *transform.StereoPair) {
	f(pair)
}

// Option configures a Receiver.
type Option func(*Receiver)

// WithClock makes the receiver measure idle and keep-alive time with clk.
func WithClock(clk clock.Clock) Option {
	return func(r *Receiver) {
		r.clk = clk
	}
}

// Stats are counters of the acquisition loop.
type Stats struct {
	Buffers         uint64
	Incomplete      uint64
	Unclassified    uint64
	MatchedPairs    uint64
	KeepAliveProbes uint64
}

// Receiver owns a stereo device's stream and hands matched intensity/disparity pairs to a Sink.
type Receiver struct {
	dev    stereo.Device
	sink   Sink
	cfg    *Config
	logger logging.Logger
	clk    clock.Clock

	// mu serializes every device call except Grab. params is refreshed under it.
	mu     sync.Mutex
	params transform.StereoParameters
	stream stereo.Stream

	tolerance         atomic.Duration
	keepAliveInterval time.Duration

	// owned by the acquisition loop
	intensity  *ImageList
	disparity  *ImageList
	lastBuffer time.Time
	lastMatch  time.Time

	state    atomic.Int32
	running  atomic.Bool
	errMu    sync.Mutex
	err      error
	loopDone chan struct{}

	workers   utils.StoppableWorkers
	closeOnce sync.Once

	buffers      atomic.Uint64
	incomplete   atomic.Uint64
	unclassified atomic.Uint64
	matched      atomic.Uint64
	probes       atomic.Uint64
}

// NewReceiver reads the device calibration, prepares the device, opens its stream and starts
// acquisition. The receiver owns dev from then on and closes it in Close.
func NewReceiver(
	ctx context.Context,
	dev stereo.Device,
	sink Sink,
	cfg *Config,
	logger logging.Logger,
	opts ...Option,
) (*Receiver, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate("receiver"); err != nil {
		return nil, err
	}
	r := &Receiver{
		dev:       dev,
		sink:      sink,
		cfg:       cfg,
		logger:    logger.Sublogger("receiver"),
		clk:       clock.New(),
		intensity: NewImageList(cfg.intensityCapacity()),
		disparity: NewImageList(cfg.disparityCapacity()),
		loopDone:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.state.Store(int32(StateStarting))

	if err := r.checkOutputMode(); err != nil {
		return nil, err
	}
	params, err := r.readCalibration()
	if err != nil {
		return nil, err
	}
	r.params = params
	if !cfg.SkipDevicePreparation {
		r.prepareDevice(ctx)
	}
	r.updateTolerance(ctx)
	r.keepAliveInterval = dev.KeepAliveInterval()

	stream, err := dev.OpenStream(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "opening stereo stream")
	}
	r.stream = stream
	now := r.clk.Now()
	r.lastBuffer = now
	r.lastMatch = now
	r.state.Store(int32(StateStreaming))
	r.running.Store(true)
	r.logger.Infow("stereo stream opened",
		"focal_length_factor", params.FocalLengthFactor,
		"baseline", params.Baseline,
		"tolerance", r.tolerance.Load())

	r.workers = utils.NewStoppableWorkers(r.acquire)
	return r, nil
}

func (r *Receiver) checkOutputMode() error {
	mode, _, err := r.dev.GetEnum("Scan3dOutputMode")
	if err != nil {
		return errors.Wrap(err, "reading disparity output mode")
	}
	if mode != outputModeDisparity {
		return errors.Errorf("unsupported disparity output mode %q, expected %q", mode, outputModeDisparity)
	}
	flag, err := r.dev.GetBoolean("Scan3dInvalidDataFlag")
	if err != nil {
		return errors.Wrap(err, "reading invalid data flag")
	}
	if !flag {
		return errors.New("device does not mark invalid disparities")
	}
	return nil
}

// readCalibration must be called with mu held once the acquisition loop runs.
func (r *Receiver) readCalibration() (transform.StereoParameters, error) {
	var params transform.StereoParameters
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"FocalLengthFactor", &params.FocalLengthFactor},
		{"Baseline", &params.Baseline},
		{"Scan3dCoordinateScale", &params.DisparityScale},
		{"Scan3dCoordinateOffset", &params.DisparityOffset},
	} {
		v, err := r.dev.GetFloat(p.name)
		if err != nil {
			return params, errors.Wrap(err, "reading stereo calibration")
		}
		*p.dst = v
	}
	invalid, err := r.dev.GetFloat("Scan3dInvalidDataValue")
	if err != nil {
		return params, errors.Wrap(err, "reading stereo calibration")
	}
	params.InvalidDisparity = int64(invalid)
	return params, params.CheckValid()
}

// prepareDevice asks for color intensity images and single component buffers. Older firmware
// lacks some of these parameters, so nothing here is fatal.
func (r *Receiver) prepareDevice(ctx context.Context) {
	try := func(what string, err error) {
		if err != nil {
			r.logger.CDebugw(ctx, "device preparation step failed", "step", what, "error", err)
		}
	}
	try("PixelFormat", r.dev.SetEnum("PixelFormat", rimage.YCbCr411_8.String()))

	wanted := []string{stereo.ComponentIntensity, stereo.ComponentDisparity}
	if _, entries, err := r.dev.GetEnum("ComponentSelector"); err != nil {
		try("ComponentSelector", err)
	} else {
		for _, component := range entries {
			if err := r.dev.SetEnum("ComponentSelector", component); err != nil {
				try("ComponentSelector", err)
				continue
			}
			try("ComponentEnable", r.dev.SetBoolean("ComponentEnable", lo.Contains(wanted, component)))
		}
	}
	try("AcquisitionAlternateFilter", r.dev.SetEnum("AcquisitionAlternateFilter", "OnlyLow"))
	try("AcquisitionMultiPartMode", r.dev.SetEnum("AcquisitionMultiPartMode", "SingleComponent"))
}

// updateTolerance re-reads the exposure mode of Out1. A failing read keeps the last tolerance.
func (r *Receiver) updateTolerance(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	source, err := r.exposureLineSource()
	if err != nil {
		r.logger.CDebugw(ctx, "cannot read exposure line source", "error", err)
		return
	}
	r.setToleranceFor(source)
}

// exposureLineSource reads LineSource of Out1 and leaves LineSelector as it found it. It must be
// called with mu held.
func (r *Receiver) exposureLineSource() (string, error) {
	prev, _, err := r.dev.GetEnum("LineSelector")
	if err != nil {
		return "", errors.Wrap(err, "reading line selector")
	}
	if prev != exposureLine {
		if err := r.dev.SetEnum("LineSelector", exposureLine); err != nil {
			return "", errors.Wrap(err, "selecting exposure line")
		}
		defer func() {
			if err := r.dev.SetEnum("LineSelector", prev); err != nil {
				r.logger.Warnw("cannot restore line selector", "selector", prev, "error", err)
			}
		}()
	}
	source, _, err := r.dev.GetEnum("LineSource")
	if err != nil {
		return "", err
	}
	return source, nil
}

func (r *Receiver) setToleranceFor(lineSource string) {
	var tol time.Duration
	if lineSource == lineSourceAlternate {
		tol = r.cfg.alternateTolerance()
	}
	if old := r.tolerance.Swap(tol); old != tol {
		r.logger.Infow("match tolerance changed", "line_source", lineSource, "tolerance", tol)
	}
}

// Tolerance is the current maximum timestamp difference of a matched pair.
func (r *Receiver) Tolerance() time.Duration {
	return r.tolerance.Load()
}

func (r *Receiver) acquire(ctx context.Context) {
	err := r.loop(ctx)

	r.state.Store(int32(StateDraining))
	r.errMu.Lock()
	r.err = err
	r.errMu.Unlock()
	r.running.Store(false)
	close(r.loopDone)

	if err != nil {
		r.logger.Errorw("acquisition stopped", "error", err)
	} else {
		r.logger.Debug("acquisition stopped")
	}
}

func (r *Receiver) loop(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("acquisition panicked: %v", p)
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		buf, err := r.stream.Grab(ctx, r.cfg.grabTimeout())
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return newConnectionLostError("grab", err)
		}
		if buf != nil {
			r.lastBuffer = r.clk.Now()
			r.handleBuffer(ctx, buf)
		}
		if err := r.keepAlive(ctx); err != nil {
			return err
		}
		if idle := r.cfg.idleTimeout(); idle > 0 && r.clk.Since(r.lastMatch) > idle {
			return errors.Wrapf(ErrSynchronizationFailed, "no matched pair for %v", idle)
		}
	}
}

// keepAlive probes the device when it has been quiet for half its heartbeat period.
func (r *Receiver) keepAlive(ctx context.Context) error {
	if r.keepAliveInterval <= 0 || r.clk.Since(r.lastBuffer) <= r.keepAliveInterval/2 {
		return nil
	}
	r.probes.Inc()
	name := r.cfg.keepAliveParameter()
	r.mu.Lock()
	_, err := r.dev.GetString(name)
	r.mu.Unlock()
	if err != nil {
		return newConnectionLostError("keep-alive read of "+name, err)
	}
	r.logger.CDebugw(ctx, "keep-alive probe", "parameter", name)
	r.lastBuffer = r.clk.Now()
	return nil
}

func (r *Receiver) handleBuffer(ctx context.Context, buf *stereo.Buffer) {
	r.buffers.Inc()
	if buf.Incomplete {
		r.incomplete.Inc()
		r.logger.CDebugw(ctx, "dropping incomplete buffer", "parts", len(buf.Parts))
		return
	}
	r.updateTolerance(ctx)

	for i, part := range buf.Parts {
		if part.Image == nil {
			continue
		}
		r.mu.Lock()
		component, err := r.dev.ComponentOfPart(buf, i)
		r.mu.Unlock()
		if err != nil {
			r.unclassified.Inc()
			r.logger.CDebugw(ctx, "cannot classify buffer part", "part", i, "error", err)
			continue
		}
		if err := part.Image.CheckValid(); err != nil {
			r.logger.CDebugw(ctx, "dropping malformed image", "component", component, "error", err)
			continue
		}
		switch component {
		case stereo.ComponentIntensity:
			r.addImage(part.Image, true)
		case stereo.ComponentDisparity:
			r.addImage(part.Image, false)
		default:
			r.unclassified.Inc()
			r.logger.CDebugw(ctx, "ignoring component", "component", component)
		}
	}
}

// addImage buffers img and emits a pair if the other stream has an image within tolerance.
func (r *Receiver) addImage(img *rimage.RawImage, isIntensity bool) {
	own, other := r.intensity, r.disparity
	if !isIntensity {
		own, other = other, own
	}
	if !own.Add(img) {
		// older than the whole history
		return
	}

	match, ok := other.FindClosest(img.Timestamp, uint64(r.tolerance.Load()))
	if !ok {
		return
	}
	intensity, disparity := img, match
	if !isIntensity {
		intensity, disparity = disparity, intensity
	}

	r.mu.Lock()
	params := r.params
	r.mu.Unlock()

	cut := img.Timestamp
	if match.Timestamp < cut {
		cut = match.Timestamp
	}
	r.intensity.RemoveUntil(cut)
	r.disparity.RemoveUntil(cut)
	r.matched.Inc()
	r.lastMatch = r.clk.Now()

	r.sink.Process(&transform.StereoPair{Intensity: intensity, Disparity: disparity, Params: params})
}

// IsRunning reports whether the acquisition loop is still running.
func (r *Receiver) IsRunning() bool {
	return r.running.Load()
}

// State is the current lifecycle state.
func (r *Receiver) State() State {
	return State(r.state.Load())
}

// Done is closed once the acquisition loop has exited.
func (r *Receiver) Done() <-chan struct{} {
	return r.loopDone
}

// Err is the reason the acquisition loop ended. It is nil while running and after a requested
// close.
func (r *Receiver) Err() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}

// Stats returns a snapshot of the loop counters.
func (r *Receiver) Stats() Stats {
	return Stats{
		Buffers:         r.buffers.Load(),
		Incomplete:      r.incomplete.Load(),
		Unclassified:    r.unclassified.Load(),
		MatchedPairs:    r.matched.Load(),
		KeepAliveProbes: r.probes.Load(),
	}
}

// Parameters is the calibration pairs are currently emitted with.
func (r *Receiver) Parameters() transform.StereoParameters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.params
}

// Close stops acquisition and releases the stream and the device. Only the first call does any
// work; later calls return nil.
func (r *Receiver) Close(ctx context.Context) error {
	var err error
	r.closeOnce.Do(func() {
		r.workers.Stop()

		r.mu.Lock()
		defer r.mu.Unlock()
		err = multierr.Combine(r.stream.Close(ctx), r.dev.Close(ctx))
		r.state.Store(int32(StateStopped))
		r.logger.Debug("receiver closed")
	})
	return err
}
