package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"popera/config"
	"popera/internal/reconcile"
	"popera/internal/store"
	"popera/internal/util"
)

func main() {
	userID := flag.String("userId", "", "user id to check (required)")
	eventID := flag.String("eventId", "", "event id to check (required)")
	fix := flag.Bool("fix", false, "cancel duplicate active reservations, keeping the most recent")
	flag.Parse()

	if *userID == "" || *eventID == "" {
		fmt.Fprintln(os.Stderr, "usage: reconcile --userId <id> --eventId <id> [--fix]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	reconciler := reconcile.New(db, time.Duration(cfg.Reconciler.QueryTimeoutSeconds)*time.Second)

	report, err := reconciler.Run(context.Background(), *userID, *eventID, *fix)
	if err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}

	// The decision is informational output; a completed run exits zero
	// whether it lands on GO or NO-GO.
	fmt.Print(report.Render())
}
