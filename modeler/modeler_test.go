package modeler

import (
	"testing"
	"time"

	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/stereomesh/logging"
	"go.viam.com/stereomesh/spatialmath"
	rtestutils "go.viam.com/stereomesh/testutils"
)

func waitForMesh(t *testing.T, m *Modeler) *spatialmath.Mesh {
	t.Helper()
	var mesh *spatialmath.Mesh
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		mesh = m.NextMesh()
		test.That(tb, mesh, test.ShouldNotBeNil)
	})
	return mesh
}

func TestModelerPublishesMeshes(t *testing.T) {
	m, err := NewModeler(nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	defer m.Close()

	test.That(t, m.NextMesh(), test.ShouldBeNil)

	m.Process(testPair(2, 160, 160, 160, 160))
	mesh := waitForMesh(t, m)
	test.That(t, len(mesh.Triangles), test.ShouldEqual, 2)
	test.That(t, m.NextMesh(), test.ShouldBeNil)

	pair := testPair(2, 160, 160, 160, 160)
	pair.Disparity.Timestamp = 4000
	m.Process(pair)
	next := waitForMesh(t, m)
	test.That(t, next.DisparityTimestamp, test.ShouldEqual, 4000)
	test.That(t, next.ID, test.ShouldNotEqual, mesh.ID)

	stats := m.Stats()
	test.That(t, stats.Processed, test.ShouldEqual, 2)
	test.That(t, stats.Failed, test.ShouldEqual, 0)
	test.That(t, stats.MedianBuildTime, test.ShouldBeGreaterThan, 0)
}

func TestModelerKeepsOnlyNewest(t *testing.T) {
	m, err := NewModeler(&Config{StatsWindow: 3}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	defer m.Close()

	const n = 20
	for i := 1; i <= n; i++ {
		pair := testPair(2, 160, 160, 160, 160)
		pair.Disparity.Timestamp = uint64(i)
		m.Process(pair)
	}

	// every pair is either replaced before it is taken or turned into a mesh
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		stats := m.Stats()
		test.That(tb, stats.Processed+stats.Dropped, test.ShouldEqual, n)
	})
	mesh := m.NextMesh()
	test.That(t, mesh, test.ShouldNotBeNil)
	test.That(t, mesh.DisparityTimestamp, test.ShouldEqual, n)
	m.timesMu.Lock()
	defer m.timesMu.Unlock()
	test.That(t, len(m.buildTimes.Values()), test.ShouldBeLessThanOrEqualTo, 3)
}

func TestModelerSkipsFailures(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	m, err := NewModeler(nil, logger)
	test.That(t, err, test.ShouldBeNil)
	defer m.Close()

	bad := testPair(2, 160, 160, 160, 160)
	bad.Disparity = rtestutils.NewMono8Image(0, 2, 2, 1)
	m.Process(bad)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, m.Stats().Failed, test.ShouldEqual, 1)
	})
	test.That(t, m.NextMesh(), test.ShouldBeNil)
	test.That(t, logs.FilterMessage("cannot build mesh").Len(), test.ShouldEqual, 1)

	// a nil pair fails the same way
	m.Process(nil)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, m.Stats().Failed, test.ShouldEqual, 2)
	})

	m.Process(testPair(2, 160, 160, 160, 160))
	waitForMesh(t, m)
	test.That(t, m.Stats().Processed, test.ShouldEqual, 1)
}

func TestModelerClose(t *testing.T) {
	m, err := NewModeler(nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	start := time.Now()
	m.Close()
	m.Close()
	test.That(t, time.Since(start), test.ShouldBeLessThan, 5*time.Second)

	m.Process(testPair(2, 160, 160, 160, 160))
	test.That(t, m.NextMesh(), test.ShouldBeNil)
	test.That(t, m.Stats().Processed, test.ShouldEqual, 0)
}

func TestModelerConfig(t *testing.T) {
	test.That(t, (&Config{}).Validate("modeler"), test.ShouldBeNil)
	test.That(t, (&Config{}).depthStep(), test.ShouldEqual, DefaultDepthStep)
	test.That(t, (&Config{}).statsWindow(), test.ShouldEqual, DefaultStatsWindow)

	zero := 0.
	test.That(t, (&Config{DepthStep: &zero}).depthStep(), test.ShouldEqual, 0)

	negative := -1.
	_, err := NewModeler(&Config{DepthStep: &negative}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "depth_step")

	err = (&Config{StatsWindow: -2}).Validate("modeler")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "stats_window")
}
