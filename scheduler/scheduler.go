package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"avito_harvester/config"
	"avito_harvester/models"
	"avito_harvester/scraper"
	"avito_harvester/storage"
)

// Scheduler runs the incremental and full crawl schedules and polls the
// operator command queue.
type Scheduler struct {
	cfg          *config.Config
	orchestrator *scraper.Orchestrator
	store        *storage.SQLiteStore
	cron         *cron.Cron
	stopCh       chan struct{}
}

func New(cfg *config.Config, orchestrator *scraper.Orchestrator, store *storage.SQLiteStore) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		orchestrator: orchestrator,
		store:        store,
		cron:         cron.New(),
		stopCh:       make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.pollCommands(ctx)

	if s.cfg.Scheduler.IncrementalCron != "" {
		log.Printf("Scheduling incremental runs: %s", s.cfg.Scheduler.IncrementalCron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.IncrementalCron, func() {
			if _, err := s.orchestrator.RunIncremental(ctx); err != nil {
				log.Printf("Scheduled incremental run error: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid incremental cron expression: %w", err)
		}
	}

	if s.cfg.Scheduler.FullCron != "" {
		log.Printf("Scheduling full runs: %s", s.cfg.Scheduler.FullCron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.FullCron, func() {
			if _, err := s.orchestrator.RunFull(ctx); err != nil {
				log.Printf("Scheduled full run error: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid full cron expression: %w", err)
		}
	}

	if s.cfg.Scheduler.IncrementalCron == "" && s.cfg.Scheduler.FullCron == "" {
		log.Println("No schedule configured, daemon will only respond to commands")
		return nil
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	close(s.stopCh)
}

func (s *Scheduler) pollCommands(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cmds, err := s.store.GetPendingCommands()
			if err != nil {
				log.Printf("Error getting commands: %v", err)
				continue
			}

			for _, cmd := range cmds {
				log.Printf("Processing command: %s", cmd.Command)
				if err := s.handleCommand(ctx, &cmd); err != nil {
					log.Printf("Command error: %v", err)
				}
				if err := s.store.MarkCommandProcessed(cmd.ID); err != nil {
					log.Printf("Error marking command processed: %v", err)
				}
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) handleCommand(ctx context.Context, cmd *models.Command) error {
	switch cmd.Command {
	case models.CmdHarvestNow:
		_, err := s.orchestrator.RunIncremental(ctx)
		return err
	case models.CmdFullNow:
		_, err := s.orchestrator.RunFull(ctx)
		return err
	case models.CmdPause:
		s.orchestrator.SetPaused(true)
		return nil
	case models.CmdResume:
		s.orchestrator.SetPaused(false)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd.Command)
	}
}
