// Command payroll imports payroll files and renders salary slips from the
// command line, using the same stores as the HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/JonMunkholm/payroll-import/internal/store/docstore" // Register stores
	_ "github.com/JonMunkholm/payroll-import/internal/store/localstore"
	_ "github.com/JonMunkholm/payroll-import/internal/store/sheetstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
