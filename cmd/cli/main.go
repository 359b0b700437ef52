package main

import (
	"context"
	"log"
	"os"

	"github.com/dverna/trasferte/internal/buildinfo"
	"github.com/dverna/trasferte/internal/client/cli"
	"github.com/dverna/trasferte/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
