package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/arnavsurve/virtuoso-converter/cmd/cli"
)

type CLI struct {
	Convert  cli.ConvertCmd  `cmd:"" default:"withargs" help:"Convert Selenium scripts to Virtuoso steps through the configured assistant."`
	Validate cli.ValidateCmd `cmd:"" help:"Check an existing steps JSON file against the Virtuoso step schema."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var c CLI
	kctx := kong.Parse(&c,
		kong.Name("virtuoso-converter"),
		kong.Description("Convert Selenium test scripts into Virtuoso test steps."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	err := kctx.Run()
	stop()
	kctx.FatalIfErrorf(err)
}
