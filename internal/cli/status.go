package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/inkwell/internal/control"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a summary of the content database",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	app, err := control.NewApp(*cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	defer func() {
		_ = app.Stop(context.Background())
	}()

	svc := app.Service()

	stats, err := svc.StatsByStatus(ctx)
	if err != nil {
		slog.Error("Failed to fetch status counts", "error", err)
		os.Exit(1)
	}

	categories, err := svc.ListCategories(ctx)
	if err != nil {
		slog.Error("Failed to fetch categories", "error", err)
		os.Exit(1)
	}

	recent, err := svc.Recent(ctx, 5)
	if err != nil {
		slog.Error("Failed to fetch recent posts", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Published: %d\nDrafts:    %d\n\n", stats.Published, stats.Draft)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tPOSTS")
	for _, c := range categories {
		fmt.Fprintf(w, "%s\t%d\n", c.Name, c.Count)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "RECENT\tSLUG\tPUBLISHED")
	for _, p := range recent {
		published := ""
		if p.PublishedAt != nil {
			published = p.PublishedAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Title, p.Slug, published)
	}
	w.Flush()
}
