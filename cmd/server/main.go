package main

import (
	"context"
	"log"
	"os"

	"github.com/dverna/trasferte/internal/buildinfo"
	"github.com/dverna/trasferte/internal/server"
	"github.com/dverna/trasferte/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
