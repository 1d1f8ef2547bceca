package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/dmitrijs2005/foodduck/internal/buildinfo"
	"github.com/dmitrijs2005/foodduck/internal/client/cli"
	"github.com/dmitrijs2005/foodduck/internal/client/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli.NewApp(cfg).Run(ctx)
}
