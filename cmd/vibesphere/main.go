package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
)

type CLI struct {
	EnvFile kongdotenv.ENVFileConfig `name:"env-file" optional:"" default:".env" help:"Path to a .env file with settings."`

	Serve  ServeCmd  `cmd:"" default:"withargs" help:"Serve the vibe sphere picker over HTTP."`
	Build  BuildCmd  `cmd:"" help:"Build a sphere from a selection and print it."`
	Import ImportCmd `cmd:"" help:"Import a catalog into a SQLite store."`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("vibesphere"),
		kong.Description("Pick up to 12 vibes and get a sphere."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	kctx.FatalIfErrorf(kctx.Run())
}
