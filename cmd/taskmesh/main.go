package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskmesh/internal/config"
	"taskmesh/internal/directory"
	"taskmesh/internal/notify"
	"taskmesh/internal/repository"
	"taskmesh/internal/service"
	"taskmesh/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	taskStore := store.New(taskRepo)
	dir := directory.NewClient(profileRepo)

	controller := service.NewController(cfg.UserID, taskStore, dir, cfg.Debounce)
	if err := controller.Start(ctx); err != nil {
		log.Fatalf("controller: %v", err)
	}
	defer controller.Stop()

	digestSvc := service.NewDigestService(controller)

	var telegram *notify.Telegram
	if cfg.TelegramToken != "" {
		telegram, err = notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
	}

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.RefreshInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.RefreshInterval, controller.Refresh); err != nil {
			log.Fatalf("schedule refresh: %v", err)
		}
	}
	if cfg.DigestTime != "" {
		if _, err := scheduler.ScheduleDaily(cfg.DigestTime, func() {
			digest := digestSvc.Daily(time.Now())
			if telegram == nil {
				log.Printf("digest:\n%s", digest)
				return
			}
			if err := telegram.Send(digest); err != nil {
				log.Printf("digest delivery: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule digest: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Printf("taskmesh started for user %s", cfg.UserID)
	<-ctx.Done()
	log.Println("Shutdown complete.")
}
