// Package main provides a tool to seed the database with a demo ranking session.
//
// Usage:
//
//	DB_PATH=~/rankdeck/data/db go run ./cmd/seed
//	go run ./cmd/seed --owner-token my-secret-token
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rankdeck/rankdeck-server/internal/domain"
	"github.com/rankdeck/rankdeck-server/internal/service"
	"github.com/rankdeck/rankdeck-server/internal/store"
)

var ownerTokenFlag = flag.String("owner-token", "", "Owner token for the demo session (empty = unowned)")

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dbPath = filepath.Join(home, "rankdeck", "data", "db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	sessions := service.NewSessionService(s, logger)
	cards := service.NewCardService(s, logger)

	ctx := context.Background()

	session, err := sessions.CreateSession(ctx, "Best Sci-Fi Movies", "A demo ranking to play with", *ownerTokenFlag)
	if err != nil {
		log.Fatalf("Failed to create demo session: %v", err)
	}

	demoCards := []domain.CardDraft{
		{Title: "Alien", Description: "Ridley Scott, 1979", Tags: []string{"horror", "space"}},
		{Title: "Blade Runner", Description: "Ridley Scott, 1982", Tags: []string{"noir"}},
		{Title: "Arrival", Description: "Denis Villeneuve, 2016", Tags: []string{"first-contact"}},
		{Title: "The Matrix", Description: "The Wachowskis, 1999", Tags: []string{"cyberpunk"}},
		{Title: "Stalker", Description: "Andrei Tarkovsky, 1979"},
	}

	for _, draft := range demoCards {
		card, _, err := cards.CreateCard(ctx, session.Slug, draft, *ownerTokenFlag)
		if err != nil {
			log.Fatalf("Failed to create card %q: %v", draft.Title, err)
		}
		fmt.Printf("  added card %s (%s)\n", card.Title, card.ID)
	}

	fmt.Printf("\nDemo session ready: /api/sessions/%s\n", session.Slug)
	if *ownerTokenFlag != "" {
		fmt.Printf("Owner token: %s\n", *ownerTokenFlag)
	} else {
		fmt.Println("Session is unowned: anyone may edit it.")
	}
}
