// Command lifeos is the terminal front end of the LifeOS dashboard: log
// entries in six life domains, ask questions, chat with a coach and read
// the aggregated views.
package main

import (
	"context"
	"fmt"
	"os"

	"lifeos/internal/cli"
)

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
