// Command mintgated runs the MintGate verification engine as a standalone
// service: an HTTP API plus a Redis-backed queue worker.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/plebbitlabs/mintgate/service"
)

func main() {
	cfg, err := service.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mintgated: %v\n", err)
		os.Exit(1)
	}

	svc, err := service.NewService(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mintgated: %v\n", err)
		os.Exit(1)
	}

	if err := svc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "mintgated: %v\n", err)
		os.Exit(1)
	}
}
