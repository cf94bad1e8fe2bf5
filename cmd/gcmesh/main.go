// Package main runs the stereo mesh pipeline against a simulated stereo camera and reports the
// rate meshes are produced at.
package main

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	goutils "go.viam.com/utils"

	"go.viam.com/stereomesh/components/camera/stereo/fake"
	"go.viam.com/stereomesh/config"
	"go.viam.com/stereomesh/logging"
	"go.viam.com/stereomesh/modeler"
	"go.viam.com/stereomesh/receiver"
)

const (
	pollInterval   = 40 * time.Millisecond
	reportInterval = 2 * time.Second
)

var logger = logging.NewLogger("gcmesh")

func main() {
	goutils.ContextualMain(mainWithArgs, logger.AsZap())
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string `flag:"config,usage=path to a JSON config file"`
	Debug      bool   `flag:"debug,usage=log at debug level"`
	Meshes     int    `flag:"meshes,usage=stop after this many meshes, 0 runs until interrupted"`
}

func mainWithArgs(ctx context.Context, args []string, _ *zap.SugaredLogger) error {
	var argsParsed Arguments
	if err := goutils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cfg := &config.Config{}
	if argsParsed.ConfigFile != "" {
		var err error
		if cfg, err = config.Read(argsParsed.ConfigFile); err != nil {
			return err
		}
	}
	if argsParsed.Debug {
		cfg.Debug = true
	}
	if err := cfg.ApplyLogging(logger); err != nil {
		return err
	}
	return run(ctx, cfg, argsParsed.Meshes, logger)
}

// run streams until ctx ends, the receiver stops or maxMeshes meshes were taken.
func run(ctx context.Context, cfg *config.Config, maxMeshes int, logger logging.Logger) (err error) {
	dev, err := fake.NewDevice(&cfg.Fake, nil, logger.Sublogger("fake"))
	if err != nil {
		return err
	}
	m, err := modeler.NewModeler(&cfg.Modeler, logger)
	if err != nil {
		return multierr.Combine(err, dev.Close(ctx))
	}
	defer m.Close()

	r, err := receiver.NewReceiver(ctx, dev, m, &cfg.Receiver, logger)
	if err != nil {
		return multierr.Combine(err, dev.Close(ctx))
	}
	defer func() {
		err = multierr.Combine(err, r.Close(context.Background()))
	}()

	var (
		meter      rateMeter
		taken      int
		lastReport = time.Now()
	)
	for {
		if !goutils.SelectContextOrWait(ctx, pollInterval) {
			return nil
		}
		if !r.IsRunning() {
			return r.Err()
		}

		now := time.Now()
		if mesh := m.NextMesh(); mesh != nil {
			meter.mark(now)
			taken++
			logger.CDebugw(ctx, "mesh",
				"id", mesh.ID,
				"vertices", len(mesh.Vertices),
				"triangles", len(mesh.Triangles),
				"area", mesh.SurfaceArea())
			if maxMeshes > 0 && taken >= maxMeshes {
				return nil
			}
		}

		if now.Sub(lastReport) >= reportInterval {
			logger.Infow("pipeline rate",
				"meshes_per_second", meter.rate(),
				"receiver", r.Stats(),
				"modeler", m.Stats())
			meter.reset()
			lastReport = now
		}
	}
}
