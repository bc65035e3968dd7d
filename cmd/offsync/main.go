package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/quantmind-br/offsync/internal/app"
	"github.com/quantmind-br/offsync/internal/backend"
	"github.com/quantmind-br/offsync/internal/config"
	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/output"
	"github.com/quantmind-br/offsync/internal/tui"
	"github.com/quantmind-br/offsync/internal/utils"
	"github.com/quantmind-br/offsync/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	log     *utils.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "offsync",
	Short: "Keep a local copy of a site for offline use",
	Long: `offsync synchronizes the resources listed in a site's offline manifests
into local storage, so the site can be read while the network is away.

Going offline fetches the manifest list, captures every resource of the
manifests whose version changed and then serves lookups locally. Writes
through the API client are refused until the site is back online.`,
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ~/.offsync/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	flags.String("root-url", "", "Site root URL")
	flags.String("manifest-list", config.DefaultManifestListPath, "Manifest list path, relative to the root URL")
	flags.String("storage-dir", config.DataDir(), "Local storage directory")
	flags.Bool("in-memory", false, "Keep captures in memory only")
	flags.String("versions-driver", config.DefaultVersionsDriver, "Manifest version store (sqlite or json)")
	flags.Bool("require-consent", false, "Only store locally after `offsync grant`")
	flags.Duration("timeout", config.DefaultTimeout, "Request timeout")
	flags.Int("retries", config.DefaultMaxRetries, "Max retries per request")
	flags.String("user-agent", "", "Custom User-Agent")
	flags.String("proxy", "", "Proxy URL")
	flags.String("flag-file", "", "Treat the platform as offline while this file exists")
	flags.String("log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")

	// Bind flags to viper
	_ = viper.BindPFlag("site.root_url", flags.Lookup("root-url"))
	_ = viper.BindPFlag("site.manifest_list_path", flags.Lookup("manifest-list"))
	_ = viper.BindPFlag("storage.directory", flags.Lookup("storage-dir"))
	_ = viper.BindPFlag("storage.in_memory", flags.Lookup("in-memory"))
	_ = viper.BindPFlag("storage.versions_driver", flags.Lookup("versions-driver"))
	_ = viper.BindPFlag("storage.require_consent", flags.Lookup("require-consent"))
	_ = viper.BindPFlag("network.timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("network.max_retries", flags.Lookup("retries"))
	_ = viper.BindPFlag("network.user_agent", flags.Lookup("user-agent"))
	_ = viper.BindPFlag("network.proxy_url", flags.Lookup("proxy"))
	_ = viper.BindPFlag("connectivity.flag_file", flags.Lookup("flag-file"))
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))

	// serve flags
	serveCmd.Flags().String("addr", config.DefaultServerAddress, "Listen address")
	serveCmd.Flags().String("definitions", "", "Manifest definitions file (YAML or JSON)")
	serveCmd.Flags().String("base-url", "", "Public base URL used in the manifest list")
	serveCmd.Flags().Bool("watch", false, "Also watch connectivity")
	_ = viper.BindPFlag("server.address", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.definitions", serveCmd.Flags().Lookup("definitions"))

	// export flags
	exportCmd.Flags().String("format", string(output.FormatMirror), "Export format (mirror or markdown)")
	exportCmd.Flags().Bool("rewrite-links", false, "Point links at the exported copies")
	exportCmd.Flags().String("content-selector", "", "CSS selector for main content (markdown)")
	exportCmd.Flags().Bool("force", false, "Overwrite existing files")
	exportCmd.Flags().Bool("dry-run", false, "Simulate without writing files")
	exportCmd.Flags().Bool("index", true, "Write index.json")

	versionCmd.Flags().Bool("json", false, "Print version information as JSON")
	configCmd.Flags().Bool("accessible", false, "Use the screen reader friendly form mode")

	// Add subcommands
	rootCmd.AddCommand(offlineCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(onlineCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(revokeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			if log != nil {
				log.Info().Msg("Shutting down gracefully...")
			}
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openApp loads the configuration and builds the application
func openApp(ctx context.Context, cmd *cobra.Command, progress bool) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log = app.NewLogger(cfg, verbose)

	opts := app.Options{
		Config:  cfg,
		Logger:  log,
		Verbose: verbose,
	}
	if progress {
		opts.OnProgress = utils.NewProgress(cmd.ErrOrStderr(), utils.DescSyncing).Report
	}
	return app.New(ctx, opts)
}

var offlineCmd = &cobra.Command{
	Use:   "offline",
	Short: "Synchronize if needed and switch to offline mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.GoOffline(ctx); err != nil {
			return syncError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "State: %s\n", a.Controller().State())
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a synchronization pass",
	Long: `Runs a synchronization pass even when already offline. Only manifests
whose version changed since the last pass are downloaded again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Controller().Synchronize(ctx); err != nil {
			return syncError(err)
		}
		p := a.Controller().Progress()
		fmt.Fprintf(cmd.OutOrStdout(), "State: %s (%d/%d captured)\n", a.Controller().State(), p.Completed, p.Total)
		return nil
	},
}

func syncError(err error) error {
	if errors.Is(err, domain.ErrPermissionDenied) {
		return fmt.Errorf("%w: run `offsync grant` to allow local storage", err)
	}
	return err
}

var onlineCmd = &cobra.Command{
	Use:   "online",
	Short: "Switch back to online mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.GoOnline(ctx) {
			return errors.New("platform is offline, staying in offline mode")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "State: %s\n", a.Controller().State())
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the offline state and stored manifest versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		status, err := a.Status(ctx)
		if err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), status)
		return nil
	},
}

func printStatus(w io.Writer, s *app.Status) {
	fmt.Fprintf(w, "Site:       %s\n", s.SiteURL)
	fmt.Fprintf(w, "State:      %s\n", s.State)
	fmt.Fprintf(w, "Lookups:    %s\n", enabled(s.LookupsEnabled))
	fmt.Fprintf(w, "Permission: %s\n", granted(s.Permission))
	fmt.Fprintf(w, "Captures:   %d\n", s.Captures)

	if len(s.Records) == 0 {
		fmt.Fprintln(w, "Manifests:  none synchronized")
		return
	}
	records := append([]domain.VersionRecord(nil), s.Records...)
	sort.Slice(records, func(i, j int) bool { return records[i].ManifestURL < records[j].ManifestURL })

	fmt.Fprintln(w, "Manifests:")
	for _, rec := range records {
		fmt.Fprintf(w, "  %s  version %s  (%s)\n", rec.ManifestURL, rec.Version, rec.UpdatedAt.Format(time.RFC3339))
	}
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func granted(b bool) string {
	if b {
		return "granted"
	}
	return "not granted"
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow connectivity and switch modes automatically",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Watch(ctx)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Publish manifest definitions and local captures over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		baseURL, _ := cmd.Flags().GetString("base-url")
		watch, _ := cmd.Flags().GetBool("watch")

		return a.Serve(ctx, app.ServeOptions{
			Address:     a.Config().Server.Address,
			Definitions: a.Config().Server.Definitions,
			BaseURL:     baseURL,
			Watch:       watch,
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the captured resources to a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatName, _ := cmd.Flags().GetString("format")
		format, err := output.ParseFormat(formatName)
		if err != nil {
			return err
		}
		rewrite, _ := cmd.Flags().GetBool("rewrite-links")
		selector, _ := cmd.Flags().GetString("content-selector")
		force, _ := cmd.Flags().GetBool("force")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		index, _ := cmd.Flags().GetBool("index")

		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Export(ctx, output.ExporterOptions{
			BaseDir:         args[0],
			Format:          format,
			RewriteLinks:    rewrite,
			ContentSelector: selector,
			Force:           force,
			DryRun:          dryRun,
			WriteIndex:      index,
			OnProgress:      utils.NewProgress(cmd.ErrOrStderr(), utils.DescExporting).Report,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d files to %s (%d skipped)\n", result.Written, args[0], result.Skipped)
		return nil
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget <manifest-url>",
	Short: "Drop the recorded version of a manifest",
	Long: `Drops the recorded version of a manifest so the next pass downloads its
resources again. Relative URLs are resolved against the manifest list.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		manifestURL, err := a.Forget(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s\n", manifestURL)
		return nil
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Allow offsync to store resources locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		consent := backend.NewConsentFile(cfg.Storage.ConsentFile)
		if err := consent.Grant(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Local storage granted (%s)\n", consent.Path())
		return nil
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Withdraw the local storage grant",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		consent := backend.NewConsentFile(cfg.Storage.ConsentFile)
		if err := consent.Revoke(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Local storage grant revoked")
		return nil
	},
}

// configPath is where `offsync config` saves
func configPath() string {
	if cfgFile != "" {
		return utils.ExpandPath(cfgFile)
	}
	return config.ConfigFilePath()
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the configuration interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		accessible, _ := cmd.Flags().GetBool("accessible")
		path := configPath()

		return tui.Run(tui.Options{
			Config:     cfg,
			Path:       path,
			Accessible: accessible,
			SaveFunc: func(c *config.Config) error {
				return config.Save(c, path)
			},
		})
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the site and local storage setup",
	Long:  "Verifies that the manifest list is reachable and local storage is usable.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := openApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Checking offline setup...")
		if printChecks(out, a.Doctor(ctx)) {
			fmt.Fprintln(out, "\nAll critical checks passed!")
		} else {
			fmt.Fprintln(out, "\nSome checks failed. Please resolve the issues above.")
		}
		return nil
	},
}

// printChecks prints one line per check and reports whether every critical
// check passed
func printChecks(w io.Writer, checks []app.Check) bool {
	allPassed := true
	for _, c := range checks {
		switch {
		case c.Passed:
			fmt.Fprintf(w, "  %s: OK (%s)\n", c.Name, c.Detail)
		case c.Critical:
			fmt.Fprintf(w, "  %s: FAILED (%s)\n", c.Name, c.Detail)
			allPassed = false
		default:
			fmt.Fprintf(w, "  %s: WARN (%s)\n", c.Name, c.Detail)
		}
	}
	return allPassed
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().JSON())
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
	},
}
