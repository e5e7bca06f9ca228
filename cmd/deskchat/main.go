package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pvictorino/supportchat/internal/app"
	"github.com/pvictorino/supportchat/internal/config"
	"go.uber.org/fx"
)

func main() {
	scopeFlag := flag.String("scope", "", "conversation scope (user id or ticket id)")
	configFlag := flag.String("config", config.DefaultPath(), "path to config.toml")
	flag.Parse()

	if *scopeFlag == "" {
		fmt.Fprintln(os.Stderr, "error: -scope is required")
		os.Exit(1)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fx.New(
		app.Module(app.Params{Scope: *scopeFlag, Config: cfg}),
		fx.NopLogger,
	).Run()
}
