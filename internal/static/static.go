package static

import _ "embed"

// GuideMd contains the embedded integrator guide served at /guide.md.
//
//go:embed guide.md
var GuideMd string
