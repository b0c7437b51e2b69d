package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cortexhq/cortex/internal/preview"
)

// cmdPreview serves a live-rendering browser preview of a diagram file
func cmdPreview(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("diagram file required (e.g., cortex preview architecture.mmd)")
	}
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	server := preview.NewServer(path,
		preview.WithBind(a.local.Preview.Bind),
		preview.WithPort(a.local.Preview.Port),
		preview.WithRenderDebounce(time.Duration(a.local.Editor.RenderDebounceMs)*time.Millisecond))

	if err := server.Start(); err != nil {
		return err
	}
	defer server.Close()

	fmt.Printf("Previewing %s at http://%s\n", path, server.Addr())
	fmt.Println("Press Ctrl+C to stop.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	fmt.Println("\nStopping preview.")
	return nil
}
