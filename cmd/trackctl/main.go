// Command trackctl is the operator CLI for the cluster: it submits,
// inspects, and kills jobs by talking to a local trackerd's ctlapi
// control socket. Grounded on cmd/rnx/main.go's thin main that just
// delegates into a cli.Execute().
package main

import (
	"fmt"
	"os"

	"github.com/gridforge/jobtracker/cmd/trackctl/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
