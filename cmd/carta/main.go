package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	klog "github.com/go-kratos/kratos/v2/log"

	"github.com/glabrego/carta-cli/internal/app"
	"github.com/glabrego/carta-cli/internal/config"
	"github.com/glabrego/carta-cli/internal/errmsg"
	"github.com/glabrego/carta-cli/internal/menu"
	"github.com/glabrego/carta-cli/internal/storage"
	"github.com/glabrego/carta-cli/internal/tui"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	// The terminal belongs to the TUI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("%s", errmsg.FormatWith(errmsg.OpInitialize, cfg.LogPath, err))
	}
	defer logFile.Close()
	logger := klog.With(
		klog.NewFilter(klog.NewStdLogger(logFile), klog.FilterLevel(klog.ParseLevel(cfg.LogLevel))),
		"ts", klog.DefaultTimestamp,
		"caller", klog.DefaultCaller,
	)

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := repo.Init(ctx); err != nil {
		log.Fatalf("storage schema error: %v", err)
	}
	if err := repo.CheckWritable(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cache is read-only (%v), refreshes will not be kept. Check CARTA_DB_PATH: %s\n", err, cfg.DBPath)
	}

	client := menu.NewClient(cfg.APIBaseURL, nil)
	service := app.NewService(client, repo, logger)

	model := tui.NewModel(service, tui.Options{
		Slug:         cfg.Slug,
		MenuURL:      cfg.MenuURL,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Tags:         cfg.Tags,
		Dwell:        cfg.Dwell,
		Frame:        cfg.Frame,
		InlineImages: cfg.ImagesEnabled(),
		Logger:       logger,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		log.Fatalf("tui error: %v", err)
	}
}
