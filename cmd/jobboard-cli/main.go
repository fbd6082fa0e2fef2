package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"job-board-go/internal/app"
	"job-board-go/internal/apply"
	"job-board-go/internal/config"
	"job-board-go/internal/filter"
	"job-board-go/internal/models"
	"job-board-go/pkg/httpclient"
)

type options struct {
	output  string
	verbose bool

	filters filter.Spec
	jobID   string

	name     string
	email    string
	password string
	phone    string
	cover    string
	resume   string
}

func main() {
	var (
		configFile = flag.String("config", "config.json", "Configuration file path")
		command    = flag.String("cmd", "jobs", "Command to run: jobs, job, apply, login, register, logout, status, config, sources, test")
		output     = flag.String("output", "console", "Output format: console, json")
		verbose    = flag.Bool("verbose", false, "Verbose output")
		help       = flag.Bool("help", false, "Show help message")

		jobID = flag.String("id", "", "Job ID (job, apply)")

		name     = flag.String("name", "", "Full name (apply, register)")
		email    = flag.String("email", "", "Email (apply, login, register)")
		password = flag.String("password", "", "Password (login, register)")
		phone    = flag.String("phone", "", "10-digit mobile number (apply)")
		cover    = flag.String("cover", "", "Cover letter text or @file (apply)")
		resume   = flag.String("resume", "", "Resume file path (apply)")
	)

	dimFlags := make(map[filter.Dimension]*string, len(filter.Dimensions))
	for _, d := range filter.Dimensions {
		dimFlags[d] = flag.String(string(d), "", fmt.Sprintf("Filter by %s (jobs)", d))
	}
	flag.Parse()

	// Show help if requested
	if *help {
		printUsage()
		os.Exit(0)
	}

	// Load environment variables
	if err := godotenv.Load(); err != nil && *verbose {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := options{
		output:   *output,
		verbose:  *verbose,
		filters:  filter.Spec{},
		jobID:    *jobID,
		name:     *name,
		email:    *email,
		password: *password,
		phone:    *phone,
		cover:    *cover,
		resume:   *resume,
	}
	for d, v := range dimFlags {
		if *v != "" {
			opts.filters[d] = *v
		}
	}

	// Execute command
	switch *command {
	case "config":
		runConfigCommand(cfg, opts)
		return
	case "sources":
		runSourcesCommand(cfg, opts)
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	logger := log.New(io.Discard, "", 0)
	if opts.verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	board, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize job board: %v", err)
	}
	defer board.Close()

	switch *command {
	case "jobs":
		err = runJobsCommand(ctx, board, opts)
	case "job":
		err = runJobCommand(ctx, board, opts)
	case "apply":
		err = runApplyCommand(ctx, board, opts)
	case "login":
		err = runLoginCommand(ctx, board, opts)
	case "register":
		err = runRegisterCommand(ctx, board, opts)
	case "logout":
		err = board.Auth.Logout()
		if err == nil {
			fmt.Println("Logged out")
		}
	case "status":
		runStatusCommand(board, opts)
	case "test":
		err = runTestCommand(ctx, board)
	default:
		fmt.Printf("Unknown command: %s\n", *command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("%s failed: %v", *command, err)
	}
}

func runJobsCommand(ctx context.Context, board *app.App, opts options) error {
	if err := board.Engine.Load(ctx); err != nil {
		return err
	}
	if opts.filters.ActiveCount() > 0 {
		board.Engine.ApplyFilters(opts.filters)
	}

	snap := board.Engine.Snapshot()
	if opts.output == "json" {
		outputJSON(snap)
		return nil
	}

	fmt.Printf("Showing %d of %d jobs\n", len(snap.Jobs), snap.Total)
	for d, v := range snap.Filters {
		fmt.Printf("  filter %s = %q\n", d, v)
	}
	fmt.Println()
	for _, job := range snap.Jobs {
		printJobLine(job)
	}
	return nil
}

func runJobCommand(ctx context.Context, board *app.App, opts options) error {
	if opts.jobID == "" {
		return fmt.Errorf("-id is required")
	}
	if err := board.Engine.Load(ctx); err != nil {
		return err
	}

	job, err := board.Engine.JobByID(opts.jobID)
	if err != nil {
		return err
	}

	if opts.output == "json" {
		outputJSON(job)
		return nil
	}

	printJobLine(job)
	fmt.Printf("  Skills:      %v\n", job.Skills)
	fmt.Printf("  Industry:    %s / %s\n", job.Industry, job.Function)
	fmt.Printf("  Openings:    %d\n", job.Openings)
	fmt.Printf("  Posted:      %s\n", job.PostedDate.Format("2006-01-02"))
	fmt.Printf("  Full stack:  %t\n", filter.IsFullStack(job))
	if job.Description != "" {
		fmt.Printf("\n%s\n", job.Description)
	}
	return nil
}

func runApplyCommand(ctx context.Context, board *app.App, opts options) error {
	if opts.jobID == "" {
		return fmt.Errorf("-id is required")
	}

	form := apply.Form{
		FullName:    opts.name,
		Email:       opts.email,
		Phone:       opts.phone,
		CoverLetter: opts.cover,
	}

	if len(opts.cover) > 1 && opts.cover[0] == '@' {
		data, err := os.ReadFile(opts.cover[1:])
		if err != nil {
			return fmt.Errorf("failed to read cover letter: %w", err)
		}
		form.CoverLetter = string(data)
	}

	if opts.resume != "" {
		data, err := os.ReadFile(opts.resume)
		if err != nil {
			return fmt.Errorf("failed to read resume: %w", err)
		}
		form.Resume = &apply.Resume{Filename: filepath.Base(opts.resume), Data: data}
	}

	receipt, err := board.Apply.Submit(ctx, opts.jobID, form)
	if err != nil {
		return err
	}

	if opts.output == "json" {
		outputJSON(receipt)
		return nil
	}
	fmt.Printf("✅ Application submitted for job %s (request %s)\n", receipt.JobID, receipt.RequestID)
	return nil
}

func runLoginCommand(ctx context.Context, board *app.App, opts options) error {
	resp, err := board.Auth.Login(ctx, models.Credentials{Email: opts.email, Password: opts.password})
	if err != nil {
		return err
	}
	fmt.Println("User logged in successfully")
	if resp.Message != "" && opts.verbose {
		fmt.Println(resp.Message)
	}
	return nil
}

func runRegisterCommand(ctx context.Context, board *app.App, opts options) error {
	resp, err := board.Auth.Register(ctx, models.Registration{Name: opts.name, Email: opts.email, Password: opts.password})
	if err != nil {
		return err
	}
	msg := resp.Message
	if msg == "" {
		msg = "User registered successfully"
	}
	fmt.Println(msg)
	return nil
}

func runStatusCommand(board *app.App, opts options) {
	status := map[string]any{
		"authenticated": board.Auth.Authenticated(),
		"token_file":    board.Config.Auth.TokenFile,
	}
	if opts.output == "json" {
		outputJSON(status)
		return
	}
	fmt.Printf("Authenticated: %t\n", status["authenticated"])
	fmt.Printf("Token file:    %s\n", status["token_file"])
}

func runTestCommand(ctx context.Context, board *app.App) error {
	fmt.Println("Testing job sources...")

	for _, source := range board.Sources.GetEnabledSources() {
		start := time.Now()
		jobs, err := source.FetchJobs(ctx)
		if err != nil {
			fmt.Printf("❌ %s test failed: %v\n", source.Name(), err)
			continue
		}
		fmt.Printf("✅ %s test passed: fetched %d jobs in %v\n", source.Name(), len(jobs), time.Since(start))
	}
	return nil
}

func runConfigCommand(cfg *config.Config, opts options) {
	if opts.output == "json" {
		outputJSON(cfg)
		return
	}

	fmt.Println("Current Configuration:")
	fmt.Printf("Job Source: %s\n", cfg.Source.Kind)
	fmt.Printf("Jobs URL: %s\n", cfg.API.JobsURL)
	fmt.Printf("Apply URL: %s\n", cfg.API.ApplyURL)
	fmt.Printf("Auth URL: %s\n", cfg.API.AuthURL)
	fmt.Printf("Supabase URL: %s\n", maskString(cfg.Source.SupabaseURL))
	fmt.Printf("Supabase Key: %s\n", maskString(cfg.Source.SupabaseKey))
	fmt.Printf("Cache Enabled: %t\n", cfg.Cache.Enabled)
	fmt.Printf("Debounce Delay: %v\n", cfg.Filters.DebounceDelay)
	fmt.Printf("Server Port: %d\n", cfg.Server.Port)
}

func runSourcesCommand(cfg *config.Config, opts options) {
	manager, err := app.NewSourceManager(cfg, httpclient.NewHttpClient(cfg.API.RequestTimeout))
	if err != nil {
		log.Fatalf("Failed to initialize sources: %v", err)
	}

	type sourceInfo struct {
		Name    string `json:"name"`
		Enabled bool   `json:"enabled"`
	}
	var infos []sourceInfo
	for name := range manager.GetSources() {
		sc, _ := manager.GetSourceConfig(name)
		infos = append(infos, sourceInfo{Name: name, Enabled: sc.Enabled})
	}

	if opts.output == "json" {
		outputJSON(infos)
		return
	}

	fmt.Println("Available Job Sources:")
	for _, info := range infos {
		status := "disabled"
		if info.Enabled {
			status = "enabled"
		}
		fmt.Printf("- %s: %s\n", info.Name, status)
	}
}

func printJobLine(job models.Job) {
	fmt.Printf("[%s] %s at %s\n", job.ID, job.Title, job.Company)
	fmt.Printf("  %s | %s | exp %s | salary %s\n", job.Location, job.JobType, job.Experience, job.Salary)
}

func outputJSON(data interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func maskString(s string) string {
	if s == "" {
		return "(unset)"
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}

func printUsage() {
	fmt.Println("Job Board CLI Tool")
	fmt.Println("Usage:")
	fmt.Println("  jobboard-cli [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  -cmd jobs      - List jobs, optionally filtered")
	fmt.Println("  -cmd job       - Show one job (-id)")
	fmt.Println("  -cmd apply     - Apply to a job (-id -name -email -phone -cover -resume)")
	fmt.Println("  -cmd login     - Log in (-email -password)")
	fmt.Println("  -cmd register  - Create an account (-name -email -password)")
	fmt.Println("  -cmd logout    - Forget the stored session")
	fmt.Println("  -cmd status    - Show session status")
	fmt.Println("  -cmd config    - Show configuration")
	fmt.Println("  -cmd sources   - List job sources")
	fmt.Println("  -cmd test      - Fetch from every enabled source")
	fmt.Println()
	fmt.Println("Filters (jobs):")
	fmt.Println("  -keyword -location -experience -salary -function -industry -fullStack -jobType")
	fmt.Println("  Comma-separated values are alternatives, e.g. -industry IT,Finance")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  jobboard-cli -cmd jobs -keyword golang -experience 2-5")
	fmt.Println("  jobboard-cli -cmd jobs -salary 10+ -jobType Remote -output json")
	fmt.Println("  jobboard-cli -cmd apply -id 64f0 -name \"Jane Doe\" -email jane@example.com -phone 9876543210 -cover @cover.txt -resume cv.pdf")
}
