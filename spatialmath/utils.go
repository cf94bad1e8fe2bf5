package spatialmath

// floatEpsilon is the tolerance used for degenerate-geometry checks.
const floatEpsilon = 1e-9
