package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	redisclient "github.com/vietddude/inkwell/internal/infra/redis"
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate-cache",
	Short: "Drop every cached response so the next requests hit the source",
	Run:   runInvalidate,
}

func init() {
	rootCmd.AddCommand(invalidateCmd)
}

func runInvalidate(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if cfg.Redis.URL == "" {
		fmt.Println("No redis URL configured, nothing to invalidate")
		return
	}

	ttl := time.Duration(cfg.Notion.CacheTTL) * time.Second
	cache, err := redisclient.NewCache(cfg.Redis, ttl)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = cache.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := cache.Invalidate(ctx); err != nil {
		slog.Error("Failed to invalidate cache", "error", err)
		os.Exit(1)
	}

	fmt.Println("Cache invalidated")
}
