package main

import (
	"context"
	"log"

	"github.com/shravan-hub/arkavo-node/internal/app/bootstrap"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Drain the audit outbox to the event bus on an interval.
func main() {
	log.Println("arkavo-node worker starting")
	app, err := bootstrap.BuildWorker()
	if err != nil {
		log.Fatalf("bootstrap worker failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("worker shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("arkavo-node worker stopped with error: %v", err)
	}
}
