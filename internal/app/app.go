package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medwire/internal/common"
	"github.com/ternarybob/medwire/internal/handlers"
	"github.com/ternarybob/medwire/internal/interfaces"
	"github.com/ternarybob/medwire/internal/scraper"
	"github.com/ternarybob/medwire/internal/services/scheduler"
	"github.com/ternarybob/medwire/internal/services/summarizer"
	"github.com/ternarybob/medwire/internal/storage/badger"
	"github.com/ternarybob/medwire/internal/tasks"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	ScraperService    *scraper.Service
	SummarizerService *summarizer.Service
	SchedulerService  *scheduler.Service
	TaskManager       *tasks.Manager

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	ScraperHandler   *handlers.ScraperHandler
	TaskHandler      *handlers.TaskHandler
	ArticleHandler   *handlers.ArticleHandler
	SummarizeHandler *handlers.SummarizeHandler
}

// New wires the application from config: storage, services, the task
// manager with its job handlers, the scheduler and the HTTP handlers
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}

	scraperService := scraper.NewDefaultService(cfg)
	summarizerService := summarizer.NewService(&cfg.Claude, logger)

	taskManager := tasks.NewManager(cfg.Workers.Count, storageManager.TaskStorage())
	jobs := tasks.NewJobs(scraperService, storageManager.ArticleStorage(), summarizerService)
	if err := jobs.RegisterAll(taskManager); err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("register jobs: %w", err)
	}

	schedulerService := scheduler.NewService()

	a := &App{
		Config:            cfg,
		Logger:            logger,
		StorageManager:    storageManager,
		ScraperService:    scraperService,
		SummarizerService: summarizerService,
		SchedulerService:  schedulerService,
		TaskManager:       taskManager,
	}

	a.APIHandler = handlers.NewAPIHandler(storageManager.ArticleStorage(), scraperService, summarizerService, schedulerService)
	a.ScraperHandler = handlers.NewScraperHandler(scraperService, taskManager)
	a.TaskHandler = handlers.NewTaskHandler(taskManager)
	a.ArticleHandler = handlers.NewArticleHandler(storageManager.ArticleStorage())
	a.SummarizeHandler = handlers.NewSummarizeHandler(summarizerService, taskManager)

	if cfg.Scheduler.Enabled {
		if err := a.registerScheduledJobs(); err != nil {
			storageManager.Close()
			return nil, err
		}
	}

	return a, nil
}

// registerScheduledJobs binds the recurring scrape-all run
func (a *App) registerScheduledJobs() error {
	err := a.SchedulerService.RegisterJob("scrape_all", a.Config.Scheduler.Schedule, func() error {
		task, err := a.TaskManager.Submit(tasks.JobScrapeAll, map[string]interface{}{
			"max_articles": a.Config.Scheduler.MaxArticles,
		})
		if err != nil {
			return err
		}
		a.Logger.Info().Str("task_id", task.ID).Msg("Scheduled scrape-all task submitted")
		return nil
	})
	if err != nil {
		return fmt.Errorf("register scheduled jobs: %w", err)
	}
	return nil
}

// Start launches the task workers and, when enabled, the scheduler
func (a *App) Start() error {
	if err := a.TaskManager.Start(); err != nil {
		return err
	}
	if a.Config.Scheduler.Enabled {
		if err := a.SchedulerService.Start(); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown stops components in reverse dependency order
func (a *App) Shutdown(ctx context.Context) error {
	a.SchedulerService.Stop()

	stopCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := a.TaskManager.Stop(stopCtx); err != nil {
		a.Logger.Warn().Err(err).Msg("Task manager did not stop cleanly")
	}

	if err := a.StorageManager.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}
