package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/foliogen/folio/builder/config"
	"github.com/foliogen/folio/builder/content"
	mdparser "github.com/foliogen/folio/builder/parser"
	"github.com/foliogen/folio/builder/search"
	"github.com/foliogen/folio/builder/wordcount"
)

func runSearch(args []string, logger *slog.Logger) {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		fmt.Println("Usage: folio search <query>")
		fmt.Println(`Queries support "quoted phrases" and tag:name filters.`)
		os.Exit(1)
	}

	cfg := config.Load(nil)
	store := content.NewStore(cfg, afero.NewOsFs(), mdparser.New(cfg.BaseURL), wordcount.New(cfg.Language), logger, nil)
	if err := store.Load(context.Background()); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	posts := store.Posts()
	docs := make([]search.Document, 0, len(posts))
	for _, p := range posts {
		body, err := store.PlainText(p.ID)
		if err != nil {
			logger.Warn("skipping unreadable post", "id", p.ID, "error", err)
			continue
		}
		docs = append(docs, search.Document{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Tags:        p.Tags,
			Body:        body,
		})
	}

	results := search.NewIndex(docs).Search(query, search.DefaultLimit)
	if len(results) == 0 {
		fmt.Println("No matches.")
		return
	}

	fmt.Printf("🔍 %d result(s) for %q\n\n", len(results), query)
	for i, r := range results {
		fmt.Printf("%2d. %s\n", i+1, r.Title)
		fmt.Printf("    %s/blog/%s.html\n", cfg.BaseURL, r.ID)
		if r.Snippet != "" {
			fmt.Printf("    %s\n", r.Snippet)
		}
		fmt.Println()
	}
}
