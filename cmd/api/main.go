package main

import (
	"context"
	"log"

	"github.com/shravan-hub/arkavo-node/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config and genesis.
// 2) Build app wiring (ports + adapters + engine operations).
// 3) Start HTTP server.
func main() {
	log.Println("arkavo-node api starting")
	app, err := bootstrap.BuildAPI()
	if err != nil {
		log.Fatalf("bootstrap api failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("api shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("arkavo-node api stopped with error: %v", err)
	}
}
