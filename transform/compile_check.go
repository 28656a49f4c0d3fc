package transform

import "github.com/halvardsen/snaplerp"

// Transform must satisfy the core package's generic Snapshot contract; a
// failure here is a compile error, not a test failure.
var _ snaplerp.Snapshot[Transform] = Transform{}
