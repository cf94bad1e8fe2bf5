// Package fake implements a simulated stereo camera that renders a synthetic scene, so the
// pipeline can run without hardware.
package fake

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	goutils "go.viam.com/utils"

	"go.viam.com/stereomesh/components/camera/stereo"
	"go.viam.com/stereomesh/logging"
	"go.viam.com/stereomesh/rimage"
)

const (
	defaultWidth           = 160
	defaultHeight          = 120
	defaultFrameRate       = 25.
	defaultPixelFormat     = "Mono8"
	defaultAlternateOffset = 40 * time.Millisecond

	// Calibration the device reports.
	focalLengthFactor = 0.8
	baseline          = 0.12
	disparityScale    = 0.0625
)

// Config are the attributes of the fake stereo device.
type Config struct {
	// Width and Height are the disparity resolution. Intensity images are twice as large.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
	// FrameRate is frames per second. 0 delivers frames as fast as they are grabbed.
	FrameRate   *float64 `json:"frame_rate,omitempty"`
	PixelFormat string   `json:"pixel_format,omitempty"`
	// AlternateExposure starts the device with Out1 driven by ExposureAlternateActive, which
	// delays every disparity image by AlternateOffset.
	AlternateExposure bool   `json:"alternate_exposure,omitempty"`
	AlternateOffset   string `json:"alternate_offset,omitempty"`
	// DropDisparityEvery drops the disparity image of every n-th frame.
	DropDisparityEvery int `json:"drop_disparity_every,omitempty"`
	// IncompleteEvery marks the first buffer of every n-th frame incomplete.
	IncompleteEvery   int    `json:"incomplete_every,omitempty"`
	KeepAliveInterval string `json:"keep_alive_interval,omitempty"`
}

// Validate checks that the config attributes are valid for a fake stereo device.
func (conf *Config) Validate(path string) error {
	if conf.Width < 0 || conf.Width%2 != 0 {
		return goutils.NewConfigValidationError(path, errors.Errorf("width must be even and non-negative, got %d", conf.Width))
	}
	if conf.Height < 0 {
		return goutils.NewConfigValidationError(path, errors.Errorf("height must be non-negative, got %d", conf.Height))
	}
	if conf.FrameRate != nil && *conf.FrameRate < 0 {
		return goutils.NewConfigValidationError(path, errors.Errorf("frame_rate must be non-negative, got %v", *conf.FrameRate))
	}
	if conf.PixelFormat != "" {
		pf, err := rimage.ParsePixelFormat(conf.PixelFormat)
		if err != nil {
			return goutils.NewConfigValidationError(path, err)
		}
		if !lo.Contains(intensityFormats, pf.String()) {
			return goutils.NewConfigValidationError(path, errors.Errorf("pixel_format %v is not an intensity format", pf))
		}
	}
	if conf.DropDisparityEvery < 0 || conf.IncompleteEvery < 0 {
		return goutils.NewConfigValidationError(path, errors.New("drop_disparity_every and incomplete_every must be non-negative"))
	}
	for field, s := range map[string]string{
		"alternate_offset":    conf.AlternateOffset,
		"keep_alive_interval": conf.KeepAliveInterval,
	} {
		if s == "" {
			continue
		}
		if d, err := time.ParseDuration(s); err != nil || d < 0 {
			return goutils.NewConfigValidationError(path, errors.Errorf("invalid %s %q", field, s))
		}
	}
	return nil
}

func (conf *Config) size() (int, int) {
	w, h := conf.Width, conf.Height
	if w == 0 {
		w = defaultWidth
	}
	if h == 0 {
		h = defaultHeight
	}
	return w, h
}

func (conf *Config) frameRate() float64 {
	if conf.FrameRate == nil {
		return defaultFrameRate
	}
	return *conf.FrameRate
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

var (
	intensityFormats = []string{rimage.Mono8.String(), rimage.RGB8.String(), rimage.YCbCr411_8.String()}
	components       = []string{stereo.ComponentIntensity, stereo.ComponentDisparity, stereo.ComponentConfidence}
)

// Device is a simulated stereo camera.
type Device struct {
	*Registry

	scene     scene
	clk       clock.Clock
	logger    logging.Logger
	frameRate float64
	offset    time.Duration
	keepAlive time.Duration
	dropEvery int
	partialN  int

	closed        atomic.Bool
	lastTimestamp atomic.Uint64
}

// NewDevice returns a new fake stereo device. A nil clk uses the wall clock.
func NewDevice(conf *Config, clk clock.Clock, logger logging.Logger) (*Device, error) {
	if conf == nil {
		conf = &Config{}
	}
	if err := conf.Validate(""); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	w, h := conf.size()
	d := &Device{
		Registry:  NewRegistry(),
		scene:     scene{width: w, height: h},
		clk:       clk,
		logger:    logger,
		frameRate: conf.frameRate(),
		offset:    parseDurationOr(conf.AlternateOffset, defaultAlternateOffset),
		keepAlive: parseDurationOr(conf.KeepAliveInterval, 0),
		dropEvery: conf.DropDisparityEvery,
		partialN:  conf.IncompleteEvery,
	}

	pixelFormat := conf.PixelFormat
	if pixelFormat == "" {
		pixelFormat = defaultPixelFormat
	}
	out1 := "ExposureActive"
	if conf.AlternateExposure {
		out1 = "ExposureAlternateActive"
	}
	d.defineParameters(pixelFormat, out1)
	logger.Debugw("fake stereo device created", "width", w, "height", h, "frame_rate", d.frameRate, "pixel_format", pixelFormat)
	return d, nil
}

func (d *Device) defineParameters(pixelFormat, out1 string) {
	d.Define("DeviceID", "fake-stereo-0", false)
	d.Define("DeviceModelName", "fake", false)
	d.DefineEnum("PixelFormat", intensityFormats, pixelFormat, true)
	d.DefineEnum("ComponentSelector", components, stereo.ComponentIntensity, true)
	d.DefineSelected("ComponentEnable", "ComponentSelector", map[string]interface{}{
		stereo.ComponentIntensity:  true,
		stereo.ComponentDisparity:  true,
		stereo.ComponentConfidence: true,
	}, nil, true)
	d.DefineEnum("LineSelector", []string{"Out1", "Out2"}, "Out1", true)
	d.DefineSelected("LineSource", "LineSelector", map[string]interface{}{
		"Out1": out1,
		"Out2": "Off",
	}, []string{"Off", "ExposureActive", "ExposureAlternateActive"}, true)
	d.DefineEnum("AcquisitionAlternateFilter", []string{"Off", "OnlyHigh", "OnlyLow"}, "Off", true)
	d.DefineEnum("AcquisitionMultiPartMode", []string{"SingleComponent", "SynchronizedComponents"}, "SynchronizedComponents", true)
	d.Define("ExposureTime", 10000., true)
	d.Define("DepthQuality", int64(2), true)

	d.Define("FocalLengthFactor", focalLengthFactor, false)
	d.Define("Baseline", baseline, false)
	d.Define("Scan3dCoordinateScale", disparityScale, false)
	d.Define("Scan3dCoordinateOffset", 0., false)
	d.Define("Scan3dInvalidDataValue", 0., false)
	d.Define("Scan3dInvalidDataFlag", true, false)
	d.DefineEnum("Scan3dOutputMode", []string{"DisparityC"}, "DisparityC", false)

	d.Define("TimestampLatchValue", int64(0), false)
	d.DefineCommand("TimestampLatch", func() error {
		d.force("TimestampLatchValue", int64(d.lastTimestamp.Load()))
		return nil
	})
}

// OpenStream starts delivering frames. Frame 0 is due immediately.
func (d *Device) OpenStream(ctx context.Context) (stereo.Stream, error) {
	if d.closed.Load() {
		return nil, errDeviceClosed
	}
	return &stream{dev: d, start: d.clk.Now()}, nil
}

// ComponentOfPart maps a part's component id to its ComponentSelector entry.
func (d *Device) ComponentOfPart(buf *stereo.Buffer, part int) (string, error) {
	if buf == nil || part < 0 || part >= len(buf.Parts) {
		return "", errors.Errorf("no part %d in buffer", part)
	}
	id := buf.Parts[part].ComponentID
	if id < 0 || id >= len(components) {
		return "", errors.Errorf("unknown component id %d", id)
	}
	return components[id], nil
}

func (d *Device) KeepAliveInterval() time.Duration {
	return d.keepAlive
}

func (d *Device) Close(ctx context.Context) error {
	d.closed.Store(true)
	return nil
}

var errDeviceClosed = errors.New("fake stereo device is closed")

// period is the camera clock step between frames.
func (d *Device) period() time.Duration {
	if d.frameRate <= 0 {
		return time.Second / time.Duration(defaultFrameRate)
	}
	return time.Duration(float64(time.Second) / d.frameRate)
}

func (d *Device) enabled(component string) bool {
	v, _ := d.selected("ComponentEnable", component)
	on, _ := v.(bool)
	return on
}

func (d *Device) alternateActive() bool {
	v, ok := d.selected("LineSource", "Out1")
	return ok && v == enumValue("ExposureAlternateActive")
}

// render produces the buffers of one frame.
func (d *Device) render(frame int) ([]*stereo.Buffer, error) {
	pfName, _, err := d.GetEnum("PixelFormat")
	if err != nil {
		return nil, err
	}
	pf, err := rimage.ParsePixelFormat(pfName)
	if err != nil {
		return nil, err
	}
	mode, _, err := d.GetEnum("AcquisitionMultiPartMode")
	if err != nil {
		return nil, err
	}

	ts := uint64(frame) * uint64(d.period())
	dispTS := ts
	if d.alternateActive() {
		dispTS += uint64(d.offset)
	}
	d.lastTimestamp.Store(dispTS)

	var parts []stereo.Part
	if d.enabled(stereo.ComponentIntensity) {
		img, err := d.scene.encodeIntensity(frame, ts, pf)
		if err != nil {
			return nil, err
		}
		parts = append(parts, stereo.Part{ComponentID: 0, Image: img})
	}
	dropped := d.dropEvery > 0 && frame%d.dropEvery == d.dropEvery-1
	if d.enabled(stereo.ComponentDisparity) && !dropped {
		parts = append(parts, stereo.Part{ComponentID: 1, Image: d.scene.encodeDisparity(frame, dispTS, disparityScale)})
	}
	if d.enabled(stereo.ComponentConfidence) {
		parts = append(parts, stereo.Part{ComponentID: 2, Image: d.scene.encodeConfidence(dispTS)})
	}

	var bufs []*stereo.Buffer
	if mode == "SingleComponent" {
		for _, p := range parts {
			bufs = append(bufs, &stereo.Buffer{Parts: []stereo.Part{p}})
		}
	} else if len(parts) > 0 {
		bufs = append(bufs, &stereo.Buffer{Parts: parts})
	}
	if len(bufs) > 0 && d.partialN > 0 && frame%d.partialN == d.partialN-1 {
		bufs[0].Incomplete = true
	}
	return bufs, nil
}

type stream struct {
	dev     *Device
	start   time.Time
	frame   int
	pending []*stereo.Buffer
	closed  atomic.Bool
}

// Grab paces frames on the device clock and hands out one buffer per call.
func (s *stream) Grab(ctx context.Context, timeout time.Duration) (*stereo.Buffer, error) {
	for len(s.pending) == 0 {
		if s.closed.Load() || s.dev.closed.Load() {
			return nil, errDeviceClosed
		}
		if s.dev.frameRate > 0 {
			due := s.start.Add(time.Duration(s.frame) * s.dev.period())
			wait := due.Sub(s.dev.clk.Now())
			if wait > timeout {
				if !s.sleep(ctx, timeout) {
					return nil, ctx.Err()
				}
				return nil, nil
			}
			if wait > 0 && !s.sleep(ctx, wait) {
				return nil, ctx.Err()
			}
		}
		bufs, err := s.dev.render(s.frame)
		if err != nil {
			return nil, err
		}
		s.frame++
		s.pending = bufs
		if len(bufs) == 0 && s.dev.frameRate <= 0 {
			// every component is disabled
			return nil, nil
		}
	}
	buf := s.pending[0]
	s.pending = s.pending[1:]
	return buf, nil
}

func (s *stream) sleep(ctx context.Context, d time.Duration) bool {
	timer := s.dev.clk.Timer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *stream) Close(ctx context.Context) error {
	s.closed.Store(true)
	return nil
}
