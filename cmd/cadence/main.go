package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/cadence/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	force := flag.Bool("force", false, "log in again even if a saved login is valid")
	status := flag.Bool("status", false, "show the saved login and exit")
	logout := flag.Bool("logout", false, "log out and forget the saved login")
	plain := flag.Bool("plain", false, "print the code and status lines instead of the TUI")
	saveQR := flag.String("save-qr", "", "also write the login code PNG to this path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		Force:      *force,
		Status:     *status,
		Logout:     *logout,
		Plain:      *plain,
		SaveQR:     *saveQR,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "cadence: %v\n", err)
		return 1
	}
	return 0
}
