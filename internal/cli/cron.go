package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"toolrent-backend/internal/jobs"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/scheduler"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cronCmd)
	cronCmd.Flags().String("run-once", "", "Run a job once and exit ('report-overdue-loans', 'all-nightly')")
}

var cronCmd = &cobra.Command{
	Use:   "cron",
	Short: "Run scheduled jobs without the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runCron,
}

func runCron(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger.Info("Starting toolrent cronjob runner...", "log_level", cfg.Log.Level)

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	jobRunner := jobs.NewJobRunner(&jobs.Services{Report: a.report}, cfg)

	if runOnce, _ := cmd.Flags().GetString("run-once"); runOnce != "" {
		logger.Info("Running job once", "job", runOnce)
		if err := runJobOnce(jobRunner, runOnce); err != nil {
			return err
		}
		logger.Info("Job execution completed", "job", runOnce)
		return nil
	}

	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		return err
	}
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.", "next_run", cronScheduler.NextRun())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	cronScheduler.Stop()
	return nil
}

func runJobOnce(jr *jobs.JobRunner, name string) error {
	switch name {
	case "report-overdue-loans":
		jr.ReportOverdueLoans()
	case "all-nightly":
		jr.RunAllNightlyJobs()
	default:
		return fmt.Errorf("unknown job %q", name)
	}
	return nil
}
