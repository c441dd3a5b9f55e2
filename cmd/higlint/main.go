package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jacoblewisau/higlint/internal/api"
	"github.com/jacoblewisau/higlint/internal/corpus"
	"github.com/jacoblewisau/higlint/internal/engine"
	"github.com/jacoblewisau/higlint/internal/ir"
	"github.com/jacoblewisau/higlint/internal/reporting"
	"github.com/jacoblewisau/higlint/internal/rules"
	"github.com/jacoblewisau/higlint/internal/security"
	"github.com/jacoblewisau/higlint/internal/shared"
	"github.com/jacoblewisau/higlint/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "audit":
		auditCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "diff":
		diffCmd(os.Args[2:])
	case "rules":
		rulesCmd(os.Args[2:])
	case "serve":
		serveCmd(os.Args[2:])
	case "user":
		userCmd(os.Args[2:])
	case "version":
		fmt.Println("higlint IR:", ir.Version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `higlint – HIG conformance auditor for Swift/SwiftUI sources

Usage:
  higlint audit  --path <source-dir> [--corpus ./rulesets/hig.yaml] [--profile productivity] [--platforms ios,watchos]
                 [--format text|json] [--fail-on important] [--out <reports-dir>] [--db ./higlint.db]
                 [--no-cache] [--config ./configs/higlint.yaml]
  higlint report --run <run-id>|latest --out <reports-dir> [--db ./higlint.db]
  higlint diff   --base <run-id> --head <run-id> --out <reports-dir> [--db ./higlint.db]
  higlint rules  [--corpus ./rulesets/hig.yaml]
  higlint serve  [--addr :8080] [--db ./higlint.db]
  higlint user   --name <username> --password <pw> [--role viewer|admin] [--db ./higlint.db]
  higlint version

Exit codes for audit: 0 no findings at or above --fail-on, 1 findings present, 2 engine error.
`)
}

func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	inPath := fs.String("path", "", "Path to the source tree to audit")
	corpusPath := fs.String("corpus", "", "Path to the rule corpus YAML")
	profile := fs.String("profile", "", "App category: productivity, media, utility, game")
	platforms := fs.String("platforms", "", "Comma-separated target platforms (ios,ipados,macos,watchos,tvos,visionos)")
	format := fs.String("format", "text", "Report format: text or json")
	failOn := fs.String("fail-on", "", "Minimum severity that fails the run (critical, important, context_dependent, minor)")
	outDir := fs.String("out", "", "Output directory for report artifacts (optional)")
	dbPath := fs.String("db", "", "SQLite database path ('' disables persistence)")
	noCache := fs.Bool("no-cache", false, "Disable the per-file result cache")
	workers := fs.Int("workers", 0, "Worker pool size (0 = number of CPUs)")
	_ = fs.Parse(args)

	cfg, cfgErr := shared.LoadConfig(*configPath)
	logger := shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if cfgErr != nil {
		slog.Error("config error", "err", cfgErr)
		os.Exit(2)
	}

	// precedence: flags > config > defaults
	if *corpusPath == "" {
		*corpusPath = cfg.Audit.CorpusPath
	}
	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *profile == "" {
		*profile = cfg.Profile.Category
	}
	if *workers == 0 {
		*workers = cfg.Audit.Workers
	}
	if *failOn == "" {
		*failOn = string(ir.SeverityMinor)
	}

	if *inPath == "" && fs.NArg() > 0 {
		*inPath = fs.Arg(0)
	}
	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "audit: --path is required")
		os.Exit(2)
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintln(os.Stderr, "audit: --format must be text or json")
		os.Exit(2)
	}
	failSev := ir.Severity(strings.ToLower(*failOn))
	if !failSev.Valid() {
		fmt.Fprintln(os.Stderr, "audit: unknown --fail-on severity:", *failOn)
		os.Exit(2)
	}

	prof := ir.Profile{Category: strings.ToLower(*profile)}
	platSpec := *platforms
	if platSpec == "" {
		platSpec = strings.Join(cfg.Profile.Platforms, ",")
	}
	for _, p := range strings.Split(platSpec, ",") {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		pl := ir.Platform(p)
		if !pl.Valid() {
			fmt.Fprintln(os.Stderr, "audit: unknown platform:", p)
			os.Exit(2)
		}
		prof.Platforms = append(prof.Platforms, pl)
	}

	disabled := make(map[string]bool, len(cfg.Rules.Disabled))
	for _, id := range cfg.Rules.Disabled {
		disabled[strings.ToUpper(strings.TrimSpace(id))] = true
	}
	rules.SetSettings(rules.Settings{
		SeverityThreshold:  ir.Severity(strings.ToLower(cfg.Rules.SeverityThreshold)),
		Disabled:           disabled,
		TapTargetMinPoints: cfg.Rules.TapTargetMinPoints,
	})

	var db *storage.DB
	if *dbPath != "" {
		var err error
		db, err = storage.OpenSQLite(*dbPath)
		if err != nil {
			slog.Error("db open error", "err", err)
			os.Exit(2)
		}
		defer db.Close()
		if err := db.CreateSchema(); err != nil {
			slog.Error("db schema error", "err", err)
			os.Exit(2)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := engine.Audit(ctx, engine.Options{
		Root:        *inPath,
		CorpusPath:  *corpusPath,
		Profile:     prof,
		Extensions:  cfg.Audit.Extensions,
		Workers:     *workers,
		ReadTimeout: cfg.Audit.ReadTimeout,
		DB:          db,
		UseCache:    !*noCache && !cfg.Audit.NoCache,
		Logger:      logger,
	})
	if err != nil {
		var rce *corpus.RuleCompileError
		if errors.As(err, &rce) {
			slog.Error("corpus compile error", "rule", rce.RuleID, "err", rce.Err)
		} else {
			slog.Error("audit error", "err", err)
		}
		os.Exit(2)
	}

	for _, w := range run.Warnings {
		slog.Warn("skipped file", "detail", w)
	}
	if run.Truncated {
		slog.Warn("audit truncated before completing every file", "run", run.ID)
	}

	if db != nil {
		if err := db.SaveRun(&run); err != nil {
			slog.Error("db save run error", "err", err)
			os.Exit(2)
		}
	}
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			slog.Error("cannot create out dir", "err", err)
			os.Exit(2)
		}
		jsonPath, _ := reporting.WriteJSON(run.ID, *outDir, &run)
		htmlPath, _ := reporting.WriteHTML(run.ID, *outDir, &run)
		slog.Info("report artifacts written", "run", run.ID, "json", jsonPath, "html", htmlPath)
	}

	switch *format {
	case "json":
		if err := reporting.RenderJSON(os.Stdout, run.Report); err != nil {
			slog.Error("render error", "err", err)
			os.Exit(2)
		}
	default:
		reporting.RenderText(os.Stdout, &run)
	}

	if run.Report.Summary.AtOrAbove(failSev) > 0 {
		os.Exit(1)
	}
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	runID := fs.String("run", "latest", "Run ID, or 'latest'")
	outDir := fs.String("out", "", "Output directory")
	dbPath := fs.String("db", "", "SQLite database path")
	format := fs.String("format", "text", "Report format: text or json")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(2)
	}
	defer db.Close()

	var run ir.Run
	if *runID == "latest" {
		run, err = db.LoadLatestRun()
	} else {
		run, err = db.LoadRun(*runID)
	}
	if err != nil {
		slog.Error("load run error", "err", err)
		os.Exit(2)
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			slog.Error("cannot create out dir", "err", err)
			os.Exit(2)
		}
		jsonPath, _ := reporting.WriteJSON(run.ID, *outDir, &run)
		htmlPath, _ := reporting.WriteHTML(run.ID, *outDir, &run)
		slog.Info("report artifacts written", "run", run.ID, "json", jsonPath, "html", htmlPath)
	}
	if *format == "json" {
		_ = reporting.RenderJSON(os.Stdout, run.Report)
	} else {
		reporting.RenderText(os.Stdout, &run)
	}
}

func diffCmd(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	base := fs.String("base", "", "Base run ID")
	head := fs.String("head", "", "Head run ID")
	outDir := fs.String("out", "", "Output directory")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *base == "" || *head == "" {
		fmt.Fprintln(os.Stderr, "diff: --base and --head are required")
		os.Exit(2)
	}
	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(2)
	}
	defer db.Close()

	br, err := db.LoadRun(*base)
	if err != nil {
		slog.Error("load base run error", "err", err)
		os.Exit(2)
	}
	hr, err := db.LoadRun(*head)
	if err != nil {
		slog.Error("load head run error", "err", err)
		os.Exit(2)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		slog.Error("cannot create out dir", "err", err)
		os.Exit(2)
	}
	path, err := reporting.WriteDiffJSON(*base, *head, *outDir, &br, &hr)
	if err != nil {
		slog.Error("diff write error", "err", err)
		os.Exit(2)
	}
	fmt.Printf("Diff OK\n  %s\n", path)
}

func rulesCmd(args []string) {
	fs := flag.NewFlagSet("rules", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	corpusPath := fs.String("corpus", "", "Path to the rule corpus YAML")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if *corpusPath == "" {
		*corpusPath = cfg.Audit.CorpusPath
	}

	if *corpusPath != "" {
		if _, err := corpus.Load(*corpusPath); err != nil {
			slog.Error("corpus load error", "err", err)
			os.Exit(2)
		}
	}
	for _, r := range rules.List() {
		plats := "all"
		if len(r.Platforms) > 0 {
			parts := make([]string, len(r.Platforms))
			for i, p := range r.Platforms {
				parts[i] = string(p)
			}
			plats = strings.Join(parts, ",")
		}
		fmt.Printf("%-28s %-18s %-32s %s\n", r.ID, r.Severity, plats, r.Summary)
	}
}

func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	addr := fs.String("addr", "", "Listen address")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	logger := shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *addr == "" {
		*addr = cfg.Server.Addr
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(2)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(2)
	}

	srv := &api.Server{
		DB:              db,
		UserStore:       db,
		Logger:          logger,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		SessionDuration: cfg.Server.SessionDuration,
	}
	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	slog.Info("review server listening", "addr", *addr, "db", filepath.Clean(*dbPath))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
		os.Exit(2)
	}
}

func userCmd(args []string) {
	fs := flag.NewFlagSet("user", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	name := fs.String("name", "", "Username")
	password := fs.String("password", "", "Password")
	role := fs.String("role", "viewer", "Role: viewer or admin")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *name == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "user: --name and --password are required")
		os.Exit(2)
	}
	if *role != "viewer" && *role != "admin" {
		fmt.Fprintln(os.Stderr, "user: --role must be viewer or admin")
		os.Exit(2)
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(2)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(2)
	}

	hash, err := security.HashPassword(*password)
	if err != nil {
		slog.Error("hash error", "err", err)
		os.Exit(2)
	}
	id, err := db.CreateUser(*name, hash, *role)
	if err != nil {
		slog.Error("create user error", "err", err)
		os.Exit(2)
	}
	fmt.Printf("User OK\n  ID: %d\n  Name: %s\n  Role: %s\n", id, *name, *role)
}
