package cli

import (
	"github.com/gridforge/jobtracker/internal/ctlapi"
)

// SocketPath and JSONOutput are populated by root's persistent flags
// before any subcommand's RunE runs, the same global-flag-then-RunE
// convention the teacher's rnx CLI uses for ConfigPath/NodeName/
// JSONOutput.
var (
	SocketPath string
	JSONOutput bool
)

func newClient() *ctlapi.Client {
	return ctlapi.NewClient(SocketPath)
}
