package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/opsched/internal/cli"
	"github.com/alexanderramin/opsched/internal/config"
	"github.com/alexanderramin/opsched/internal/db"
	"github.com/alexanderramin/opsched/internal/logging"
	"github.com/alexanderramin/opsched/internal/repository"
	"github.com/alexanderramin/opsched/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log, os.Stderr)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	log.Debug().Str("db", cfg.DBPath).Msg("database opened")

	// Wire repositories
	checklistTemplates := repository.NewSQLiteChecklistTemplateRepo(database)
	occurrences := repository.NewSQLiteOccurrenceRepo(database)
	workflowTemplates := repository.NewSQLiteWorkflowTemplateRepo(database)
	projects := repository.NewSQLiteProjectRepo(database)
	tasks := repository.NewSQLiteTaskRepo(database)
	objections := repository.NewSQLiteObjectionRepo(database)

	uow := db.NewSQLiteUnitOfWork(database).WithLogger(log)
	sched := service.Scheduling{Policy: cfg.Policy, MaxAttempts: cfg.ResolveMaxAttempts}
	observer := service.NewLogUseCaseObserver(log)

	app := &cli.App{
		Checklists: service.NewChecklistService(checklistTemplates, occurrences, uow, sched, observer),
		Workflows:  service.NewWorkflowService(workflowTemplates, uow),
		Projects:   service.NewProjectService(projects, workflowTemplates, uow, sched, observer),
		Tasks:      service.NewTaskService(tasks, uow, observer),
		Objections: service.NewObjectionService(objections, projects, tasks, uow, sched, observer),
		Scoring:    service.NewScoringService(projects, tasks, occurrences, objections, observer),
		Log:        log,
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
