//go:build tools

package main

// This file ensures build-time tool dependencies are tracked in go.mod
// even though they're not imported by regular code. Fake generation
// uses the counterfeiter version pinned here.

import (
	_ "github.com/maxbrunsfeld/counterfeiter/v6"
)
