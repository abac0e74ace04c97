package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prpulse/prpulse/internal/export"
	githubapi "github.com/prpulse/prpulse/internal/github"
	"github.com/prpulse/prpulse/internal/models"
	"github.com/prpulse/prpulse/internal/report"
	"github.com/prpulse/prpulse/internal/repositories"
	"github.com/prpulse/prpulse/internal/services"
	"github.com/prpulse/prpulse/pkg/config"
	"github.com/prpulse/prpulse/pkg/database"
	"github.com/prpulse/prpulse/pkg/logger"
)

type options struct {
	mode        string
	repo        string
	days        int
	user        string
	allUsers    bool
	detail      bool
	staleDays   int
	compareDays int
	exportPath  string
	fromDB      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.mode, "mode", "open", "Report mode: open, closed or compare")
	flag.StringVar(&opts.repo, "repo", "", "Single repository to report on (default: all configured)")
	flag.IntVar(&opts.days, "days", 0, "Observation window in days for closed PRs (default: configured value)")
	flag.StringVar(&opts.user, "user", "", "GitHub username to track closed PRs for")
	flag.BoolVar(&opts.allUsers, "all-users", false, "Break closed PR statistics down by author")
	flag.BoolVar(&opts.detail, "detail", false, "List PRs awaiting a first comment")
	flag.IntVar(&opts.staleDays, "stale-days", 0, "Flag PRs with no activity for this many days (implies -detail)")
	flag.IntVar(&opts.compareDays, "compare-days", 0, "Compare against the snapshot from this many days ago")
	flag.StringVar(&opts.exportPath, "export", "", "Write snapshot history to an xlsx file at this path")
	flag.BoolVar(&opts.fromDB, "from-db", false, "Report from stored snapshots without calling GitHub")
	flag.Parse()

	if opts.mode != "open" && opts.mode != "closed" && opts.mode != "compare" {
		fmt.Fprintf(os.Stderr, "Unknown mode %q\n", opts.mode)
		os.Exit(2)
	}
	if opts.user != "" && opts.allUsers {
		fmt.Fprintln(os.Stderr, "-user and -all-users are mutually exclusive")
		os.Exit(2)
	}
	if opts.days < 0 {
		fmt.Fprintln(os.Stderr, "-days must not be negative")
		os.Exit(2)
	}

	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig
	if opts.days == 0 {
		opts.days = cfg.Report.ClosedWindowDays
	}

	repos := cfg.GitHub.Repos
	if opts.repo != "" {
		repos = []string{opts.repo}
	}
	if len(repos) == 0 {
		logger.Fatalf("No repositories configured: set GITHUB_REPOS or pass -repo")
	}

	if err := database.Init(cfg.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	snapshotRepo := repositories.NewSnapshotRepository(database.DB)
	if err := snapshotRepo.Init(); err != nil {
		logger.Fatalf("Failed to initialize snapshot store: %v", err)
	}
	runRepo := repositories.NewReportRunRepository(database.DB)
	if err := runRepo.Init(); err != nil {
		logger.Fatalf("Failed to initialize report run store: %v", err)
	}

	client := githubapi.NewClient(cfg.GitHub.Token, cfg.GitHub.Org)
	app := &app{
		cfg:               cfg,
		opts:              opts,
		client:            client,
		snapshotRepo:      snapshotRepo,
		runRepo:           runRepo,
		openService:       services.NewOpenRequestService(snapshotRepo, client),
		closedService:     services.NewClosedRequestService(client),
		snapshotService:   services.NewSnapshotService(snapshotRepo),
		comparisonService: services.NewComparisonService(snapshotRepo),
	}

	ctx := context.Background()
	switch opts.mode {
	case "open":
		app.runOpenReport(ctx, repos)
	case "closed":
		app.runClosedReport(ctx, repos)
	case "compare":
		app.runCompareReport(repos)
	}
}

type app struct {
	cfg               *config.Config
	opts              options
	client            *githubapi.Client
	snapshotRepo      *repositories.SnapshotRepository
	runRepo           *repositories.ReportRunRepository
	openService       *services.OpenRequestService
	closedService     *services.ClosedRequestService
	snapshotService   *services.SnapshotService
	comparisonService *services.ComparisonService
}

func (a *app) runOpenReport(ctx context.Context, repos []string) {
	report.PrintHeader(os.Stdout, "GitHub PR Report")

	for _, repoName := range repos {
		if a.opts.fromDB {
			snapshot, err := a.snapshotService.GetLatestRequired(repoName)
			if err != nil {
				logger.Fatalf("%v: run without -from-db to aggregate live data", err)
			}
			report.PrintOpenSnapshot(os.Stdout, snapshot, nil)
			a.printComparison(snapshot)
			continue
		}

		run := models.NewReportRun(repoName, models.RunModeOpen)
		a.recordRun(run)

		requests, err := a.client.ListOpenRequests(ctx, repoName)
		if err != nil {
			logger.Fatalf("Failed to list open PRs for %s: %v", repoName, err)
		}

		snapshot, stale, err := a.openService.ComputeOpenSnapshot(ctx, repoName, requests, services.OpenSnapshotOptions{
			Detail:                a.opts.detail,
			StaleThresholdDays:    a.opts.staleDays,
			MinZeroCommentAgeDays: a.cfg.Report.MinZeroCommentAgeDays,
			ReadyLabel:            a.cfg.Report.ReadyLabel,
			DoNotMergeLabel:       a.cfg.Report.DoNotMergeLabel,
		})
		if err != nil {
			logger.Fatalf("Failed to compute snapshot for %s: %v", repoName, err)
		}

		run.Finish(len(requests))
		a.updateRun(run)

		report.PrintOpenSnapshot(os.Stdout, snapshot, stale)
		a.printComparison(snapshot)
		a.exportHistory(repoName)
	}
}

func (a *app) runClosedReport(ctx context.Context, repos []string) {
	report.PrintHeader(os.Stdout, "Closed PR Analysis Report")
	fmt.Printf("Period: Last %d days\n", a.opts.days)
	if a.opts.user != "" {
		fmt.Printf("Tracking user: %s\n", a.opts.user)
	}

	for _, repoName := range repos {
		run := models.NewReportRun(repoName, models.RunModeClosed)
		a.recordRun(run)

		closed, err := a.client.ListClosedRequests(ctx, repoName)
		if err != nil {
			logger.Fatalf("Failed to list closed PRs for %s: %v", repoName, err)
		}

		cycleReport, err := a.closedService.ComputeCycleTimeReport(ctx, repoName, closed, a.opts.days, services.IdentityFilter{
			Login:      a.opts.user,
			AllAuthors: a.opts.allUsers,
		})
		if err != nil {
			logger.Fatalf("Failed to analyze closed PRs for %s: %v", repoName, err)
		}

		run.Finish(cycleReport.TotalClosed)
		a.updateRun(run)

		report.PrintCycleTimeReport(os.Stdout, cycleReport)
	}
}

func (a *app) runCompareReport(repos []string) {
	report.PrintHeader(os.Stdout, "PR Trend Report")

	days := a.opts.compareDays
	if days == 0 {
		days = 7
	}

	for _, repoName := range repos {
		current, err := a.snapshotService.GetLatestRequired(repoName)
		if err != nil {
			logger.Fatalf("%v: run an open report first to store a snapshot", err)
		}

		comparison, err := a.comparisonService.GetComparison(current, days)
		if err != nil {
			logger.Fatalf("Failed to compare snapshots for %s: %v", repoName, err)
		}
		if comparison == nil {
			fmt.Printf("\nRepository: %s\nNo history to compare against.\n", repoName)
			continue
		}

		report.PrintComparison(os.Stdout, comparison)
	}
}

func (a *app) printComparison(snapshot *models.Snapshot) {
	if a.opts.compareDays <= 0 {
		return
	}

	comparison, err := a.comparisonService.GetComparison(snapshot, a.opts.compareDays)
	if err != nil {
		logger.Fatalf("Failed to compare snapshots for %s: %v", snapshot.RepoName, err)
	}
	if comparison == nil {
		fmt.Printf("No history to compare against.\n")
		return
	}

	report.PrintComparison(os.Stdout, comparison)
}

func (a *app) exportHistory(repoName string) {
	if a.opts.exportPath == "" {
		return
	}

	// Export covers the trailing quarter
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -90)
	snapshots, err := a.snapshotRepo.GetInRange(repoName, start, end)
	if err != nil {
		logger.Fatalf("Failed to load snapshot history for %s: %v", repoName, err)
	}

	if err := export.WriteSnapshotHistory(a.opts.exportPath, repoName, snapshots); err != nil {
		logger.Fatalf("Failed to export snapshot history: %v", err)
	}
	logger.Infof("Wrote snapshot history for %s to %s", repoName, a.opts.exportPath)
}

func (a *app) recordRun(run *models.ReportRun) {
	if err := a.runRepo.Create(run); err != nil {
		logger.WithError(err).Warnf("Failed to record report run for %s", run.RepoName)
	}
}

func (a *app) updateRun(run *models.ReportRun) {
	if err := a.runRepo.Update(run); err != nil {
		logger.WithError(err).Warnf("Failed to update report run for %s", run.RepoName)
	}
}
