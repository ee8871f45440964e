package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andrejsstepanovs/memberqr/config"
	"github.com/andrejsstepanovs/memberqr/db"
	"github.com/andrejsstepanovs/memberqr/file"
	"github.com/andrejsstepanovs/memberqr/imageconv"
	"github.com/andrejsstepanovs/memberqr/logging"
	"github.com/andrejsstepanovs/memberqr/preview"
	"github.com/andrejsstepanovs/memberqr/publish"
	"github.com/andrejsstepanovs/memberqr/qr"
	"github.com/andrejsstepanovs/memberqr/roster"
	"github.com/andrejsstepanovs/memberqr/storage"
	"github.com/andrejsstepanovs/memberqr/verify"
	"github.com/andrejsstepanovs/memberqr/watch"
)

// App carries the global flags and what is built from them before a command runs.
type App struct {
	configPath string
	logLevel   string
	dev        bool

	cfg    *config.Config
	logger *zap.Logger
}

func newPublishCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload member photos, render profile pages, write QR codes and upload the index page",
		Args:  cobra.NoArgs,
		Run:   app.handlePublish,
	}
	cmd.Flags().String("photos", "", "photo directory (default from config)")
	cmd.Flags().String("output", "", "QR code output directory (default from config)")
	cmd.Flags().Bool("watch", false, "publish again whenever the photo directory changes")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [id name image-filename]",
		Short: "Add a member to the roster. Without arguments, prompts until an empty id is entered",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 3 {
				return fmt.Errorf("expected no arguments or exactly 3 (id, name, image filename), got %d", len(args))
			}
			return nil
		},
		Run: app.handleAdd,
	}
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the roster",
		Args:  cobra.NoArgs,
		Run:   app.handleList,
	}
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent publish runs, or the artifacts of one run",
		Args:  cobra.MaximumNArgs(1),
		Run:   app.handleHistory,
	}
	cmd.Flags().Int("limit", 10, "number of runs to show")
	return cmd
}

func newVerifyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that every member page and the index page are reachable",
		Args:  cobra.NoArgs,
		Run:   app.handleVerify,
	}
	cmd.Flags().String("photos", "", "photo directory (default from config)")
	return cmd
}

func newPreviewCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Serve the local storage root over HTTP",
		Args:  cobra.NoArgs,
		Run:   app.handlePreview,
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	return cmd
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:              "memberqr",
		Short:            "Member profile pages and QR codes for the club roster",
		PersistentPreRun: app.setup,
	}
	cmd.PersistentFlags().StringVar(&app.configPath, "config", "memberqr.yaml", "YAML config file")
	cmd.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&app.dev, "dev", false, "human readable development logging")
	cmd.AddCommand(
		newPublishCmd(app),
		newAddCmd(app),
		newListCmd(app),
		newHistoryCmd(app),
		newVerifyCmd(app),
		newPreviewCmd(app),
	)
	return cmd
}

func (a *App) setup(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.dev {
		cfg.Log.Development = true
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	a.cfg = cfg
	a.logger = logger
}

func (a *App) newStorage(ctx context.Context) (storage.Storage, error) {
	if a.cfg.Storage.Backend == config.BackendLocal {
		return storage.NewLocal(a.cfg.Storage.LocalRoot, a.cfg.Storage.LocalURL), nil
	}
	return storage.NewS3(ctx, a.cfg.Region)
}

func (a *App) handlePublish(cmd *cobra.Command, args []string) {
	if photos, _ := cmd.Flags().GetString("photos"); photos != "" {
		a.cfg.PhotosDir = photos
	}
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		a.cfg.OutputDir = output
	}
	watchMode, _ := cmd.Flags().GetBool("watch")

	if err := a.cfg.ValidatePublish(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := a.newStorage(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	var opts []publish.Option
	if a.cfg.Ledger.Path != "" {
		ledger, err := db.OpenLedger(a.cfg.Ledger.Path)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer ledger.Close()
		opts = append(opts, publish.WithRecorder(ledger))
	}

	publisher := publish.New(publish.Config{
		PhotosDir:    a.cfg.PhotosDir,
		OutputDir:    a.cfg.OutputDir,
		ImagesBucket: a.cfg.ImagesBucket,
		PagesBucket:  a.cfg.PagesBucket,
		CDNBaseURL:   a.cfg.CDNBaseURL,
		ClubName:     a.cfg.ClubName,
		SignedURLTTL: a.cfg.SignedURLTTL,
		Extensions:   file.PhotoExtensions,
	}, store, imageconv.NewNormalizer(a.cfg.MaxWidth), qr.PageEncoder(), a.logger, opts...)

	runOnce := func(ctx context.Context) error {
		result, err := publisher.Run(ctx)
		if err != nil {
			return err
		}
		printResult(a.cfg, result)
		return nil
	}

	if err := runOnce(ctx); err != nil {
		fmt.Printf("Error during publish operation: %v\n", err)
		os.Exit(1)
	}
	if !watchMode {
		return
	}

	fmt.Printf("Watching %s for changes, press Ctrl+C to stop\n", a.cfg.PhotosDir)
	if err := watch.Watch(ctx, a.cfg.PhotosDir, file.PhotoExtensions, watch.DefaultDebounce, a.logger, runOnce); err != nil {
		fmt.Printf("Error during publish operation: %v\n", err)
		os.Exit(1)
	}
}

func printResult(cfg *config.Config, result *publish.Result) {
	if result.DirCreated {
		fmt.Printf("Folder '%s' created. Add member photos and run again.\n", cfg.PhotosDir)
		return
	}

	for _, artifact := range result.Artifacts {
		if artifact.Skipped() {
			fmt.Printf("Skipped %s: %s\n", artifact.BaseName, artifact.SkipReason)
			continue
		}
		qrState := "QR code written"
		if !artifact.QRGenerated {
			qrState = "QR code already exists"
		}
		fmt.Printf("Published %s: %s (%s)\n", artifact.DisplayName, artifact.PageURL, qrState)
	}
	fmt.Printf("Uploaded index.html with %d members (run %s)\n", len(result.Pages), result.RunID)
	fmt.Printf("QR codes saved to '%s'\n", cfg.OutputDir)
}

func (a *App) handleAdd(cmd *cobra.Command, args []string) {
	adder := &memberAdder{
		store:          roster.NewStore(a.cfg.Roster.File, a.cfg.Roster.ImagesDir),
		encoder:        qr.ProfileEncoder(),
		profileBaseURL: a.cfg.ProfileBaseURL,
		qrDir:          a.cfg.Roster.QRCodesDir,
		out:            cmd.OutOrStdout(),
	}

	var err error
	if len(args) == 3 {
		err = adder.add(args[0], args[1], args[2])
	} else {
		err = adder.prompt(cmd.InOrStdin())
	}
	if err != nil {
		fmt.Printf("Error during add operation: %v\n", err)
		os.Exit(1)
	}
}

func (a *App) handleList(cmd *cobra.Command, args []string) {
	members, err := roster.NewStore(a.cfg.Roster.File, a.cfg.Roster.ImagesDir).Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d members\n", len(members))
	for _, m := range members {
		fmt.Printf("%s \t %s \t %s\n", m.ID, m.Name, m.ImageURL)
	}
}

func (a *App) handleHistory(cmd *cobra.Command, args []string) {
	if a.cfg.Ledger.Path == "" {
		fmt.Println("Error: LEDGER_PATH is not configured")
		os.Exit(1)
	}
	limit, _ := cmd.Flags().GetInt("limit")

	ledger, err := db.OpenLedger(a.cfg.Ledger.Path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer ledger.Close()

	if len(args) == 1 {
		artifacts, err := db.GetRunArtifacts(ledger.DB(), args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Found %d artifacts\n", len(artifacts))
		for _, art := range artifacts {
			if art.Skipped() {
				fmt.Printf("%s \t skipped: %s\n", art.BaseName, art.SkipReason)
				continue
			}
			fmt.Printf("%s \t %s \t (qr generated: %t)\n", art.BaseName, art.PageURL, art.QRGenerated)
		}
		return
	}

	runs, err := db.ListRuns(ledger.DB(), limit)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Found %d runs\n", len(runs))
	for _, run := range runs {
		finished := "unfinished"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%s \t %s \t %s \t (published %d, skipped %d)\n",
			run.ID, run.StartedAt.Format("2006-01-02 15:04:05"), finished, run.Published, run.Skipped)
	}
}

func (a *App) handleVerify(cmd *cobra.Command, args []string) {
	photosDir := a.cfg.PhotosDir
	if photos, _ := cmd.Flags().GetString("photos"); photos != "" {
		photosDir = photos
	}

	config, err := verify.ParseConfig(photosDir, a.cfg.CDNBaseURL)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	results, err := verify.Run(cmd.Context(), config)
	if err != nil {
		fmt.Printf("Error during verify operation: %v\n", err)
		os.Exit(1)
	}

	failed := 0
	for _, r := range results {
		mark := "ok"
		if !r.OK {
			mark = "FAIL"
			failed++
		}
		fmt.Printf("%s \t %d \t %s\n", mark, r.Code, r.URL)
	}
	fmt.Printf("Checked %d pages, %d failed\n", len(results), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func (a *App) handlePreview(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving %s on %s\n", a.cfg.Storage.LocalRoot, addr)
	if err := preview.Serve(ctx, addr, a.cfg.Storage.LocalRoot, a.logger); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// Execute initializes and runs the root command. It is the single entry point
// for the command-line interface.
func Execute() {
	app := &App{}
	rootCmd := newRootCmd(app)
	if err := rootCmd.Execute(); err != nil {
		// Cobra prints the error, so we just need to exit.
		os.Exit(1)
	}
	if app.logger != nil {
		_ = app.logger.Sync()
	}
}
