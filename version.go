package onboard

import _ "embed"

// Version is the release of onboard, read from the VERSION file.
//
//go:embed VERSION
var Version string
