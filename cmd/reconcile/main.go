// Command reconcile recounts the cached comment counters of one post, or of
// every post, from the comment rows.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/services"
	"inkwell/internal/telemetry"
)

func main() {
	post := flag.String("post", "", "post id to reconcile; empty reconciles every post")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := telemetry.NewLogger(os.Stderr, cfg.ServiceName+"-reconcile", cfg.SlogLevel())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(cfg)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	comments := services.NewCommentService(services.Deps{
		Store:  repository.NewGorm(gdb),
		Logger: logger,
	})

	if *post != "" {
		id, err := models.ParseID(*post)
		if err != nil {
			logger.Error("invalid post id", "post", *post, "error", err)
			os.Exit(2)
		}
		rc, err := comments.ReconcileCounters(ctx, id)
		if err != nil {
			logger.Error("reconcile", "post_id", id, "error", err)
			os.Exit(1)
		}
		logger.Info("reconciled", "post_id", rc.PostID, "drifted", rc.Drifted(),
			"total_comments", rc.After.TotalComments, "total_parent_comments", rc.After.TotalParentComments)
		return
	}

	drifted, err := comments.ReconcileAll(ctx)
	for _, rc := range drifted {
		logger.Info("repaired", "post_id", rc.PostID,
			"before_comments", rc.Before.TotalComments, "after_comments", rc.After.TotalComments,
			"before_parents", rc.Before.TotalParentComments, "after_parents", rc.After.TotalParentComments)
	}
	if err != nil {
		logger.Error("reconcile all", "error", err)
		os.Exit(1)
	}
	logger.Info("reconcile finished", "drifted", len(drifted))
}
