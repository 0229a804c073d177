package main

import (
	"fmt"
	"os"
	"time"

	"github.com/foliogen/folio/builder/cache"
	"github.com/foliogen/folio/builder/config"
)

func handleCacheCommand(args []string) {
	if len(args) < 1 {
		printCacheUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "stats":
		cacheStats()
	case "sweep":
		cacheSweep()
	case "inspect":
		if len(args) < 2 {
			fmt.Println("Usage: folio cache inspect <path>")
			os.Exit(1)
		}
		cacheInspect(args[1])
	default:
		fmt.Printf("Unknown cache subcommand: %s\n", args[0])
		printCacheUsage()
		os.Exit(1)
	}
}

func printCacheUsage() {
	fmt.Println("Usage: folio cache <subcommand> [arguments]")
	fmt.Println("\nSubcommands:")
	fmt.Println("  stats          Show cache statistics")
	fmt.Println("  sweep          Remove unreferenced rendered artifacts")
	fmt.Println("  inspect <path> Show the cache entry for a content file")
	fmt.Println("\nTo delete the cache entirely, run: folio clean --cache")
}

// openCache runs in production mode for durability.
func openCache() *cache.Manager {
	cfg := config.Load(nil)
	cm, err := cache.Open(cfg.CacheDir, false)
	if err != nil {
		fmt.Printf("❌ Failed to open cache: %v\n", err)
		os.Exit(1)
	}
	return cm
}

func cacheStats() {
	cm := openCache()
	defer func() { _ = cm.Close() }()

	stats, err := cm.Stats()
	if err != nil {
		fmt.Printf("❌ Failed to get stats: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("📊 Cache Statistics")
	fmt.Println("════════════════════════════════════════")
	fmt.Printf("Schema Version:  %d\n", stats.SchemaVersion)
	fmt.Printf("Total Posts:     %d\n", stats.TotalPosts)
	fmt.Printf("Total Authors:   %d\n", stats.TotalAuthors)
	fmt.Printf("Store Size:      %.2f MB\n", float64(stats.StoreBytes)/(1024*1024))
	fmt.Printf("Build Count:     %d\n", stats.BuildCount)

	if stats.LastGC > 0 {
		fmt.Printf("Last Sweep:      %s\n", time.Unix(stats.LastGC, 0).Format(time.RFC3339))
	} else {
		fmt.Printf("Last Sweep:      never\n")
	}

	if stats.TotalPosts > 0 {
		fmt.Printf("Inline Posts:    %d (%.1f%%)\n", stats.InlinePosts, float64(stats.InlinePosts)*100/float64(stats.TotalPosts))
		fmt.Printf("Hashed Posts:    %d (%.1f%%)\n", stats.HashedPosts, float64(stats.HashedPosts)*100/float64(stats.TotalPosts))
	}
}

func cacheSweep() {
	cm := openCache()
	defer func() { _ = cm.Close() }()

	fmt.Println("🗑️  Sweeping unreferenced artifacts...")

	result, err := cm.Sweep()
	if err != nil {
		fmt.Printf("❌ Sweep failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("════════════════════════════════════════")
	fmt.Printf("Scanned:    %d artifacts\n", result.Scanned)
	fmt.Printf("Live:       %d artifacts\n", result.LiveHashes)
	fmt.Printf("Deleted:    %d artifacts\n", result.Deleted)
	fmt.Printf("Duration:   %v\n", result.Duration)
	fmt.Println("\n✅ Sweep complete")
}

func cacheInspect(path string) {
	cm := openCache()
	defer func() { _ = cm.Close() }()

	post, err := cm.GetPostByPath(path)
	if err != nil {
		fmt.Printf("❌ Error looking up path: %v\n", err)
		os.Exit(1)
	}
	if post == nil {
		fmt.Printf("❌ No cache entry found for: %s\n", path)
		os.Exit(1)
	}

	fmt.Println("📄 Cache Entry")
	fmt.Println("════════════════════════════════════════")
	fmt.Printf("PostID:       %s\n", post.ID)
	fmt.Printf("Path:         %s\n", post.Path)
	fmt.Printf("Title:        %s\n", post.Title)
	fmt.Printf("ModTime:      %s\n", time.Unix(post.ModTime, 0).Format(time.RFC3339))
	fmt.Printf("ContentHash:  %s\n", truncateHash(post.ContentHash))
	fmt.Printf("Created:      %s\n", post.CreatedAt.Format("2006-01-02"))
	fmt.Printf("Tags:         %v\n", post.Tags)
	fmt.Printf("Authors:      %v\n", post.Authors)
	fmt.Printf("WordCount:    %d\n", post.WordCount)
	fmt.Printf("Headings:     %d\n", len(post.TOC))
	fmt.Printf("Draft:        %v\n", post.Draft)
	if post.Order > 0 {
		fmt.Printf("Order:        %d\n", post.Order)
	}
	if len(post.InlineHTML) > 0 {
		fmt.Printf("HTML:         inline (%d bytes)\n", len(post.InlineHTML))
	} else if post.HTMLHash != "" {
		fmt.Printf("HTML:         store %s\n", truncateHash(post.HTMLHash))
	}
}

func truncateHash(hash string) string {
	if len(hash) > 16 {
		return hash[:8] + "..." + hash[len(hash)-8:]
	}
	return hash
}
