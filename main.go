// yamltr: translates the string values of a YAML file while keeping its
// structure, comments and template variables intact.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/xid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/minios-linux/yamltr/backend"
	"github.com/minios-linux/yamltr/config"
	"github.com/minios-linux/yamltr/i18n"
	"github.com/minios-linux/yamltr/langmeta"
	"github.com/minios-linux/yamltr/logging"
	"github.com/minios-linux/yamltr/settings"
	"github.com/minios-linux/yamltr/translate"
	"github.com/minios-linux/yamltr/yamlfile"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ---------------------------------------------------------------------------
// Application state
// ---------------------------------------------------------------------------

// app carries what every command needs: the output streams, the global flags
// and the logger built from them.
type app struct {
	stdout io.Writer
	stderr io.Writer

	logLevel string
	envFile  string

	log *slog.Logger
}

func newApp(stdout, stderr io.Writer) *app {
	// Replaced in setup; covers errors raised before flags are parsed.
	log, _ := logging.New(stderr, logging.Config{Level: "info", TimeFormat: "15:04:05"})
	return &app{
		stdout: stdout,
		stderr: stderr,
		log:    log,
	}
}

// setup loads the optional dotenv file and builds the logger.
func (a *app) setup() error {
	switch {
	case a.envFile != "":
		if err := godotenv.Load(a.envFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", a.envFile, err)
		}
	case fileExists(".env"):
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("loading .env: %w", err)
		}
	}

	cfg, err := logging.ConfigFromEnv()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Level = a.logLevel
	}
	log, err := logging.New(a.stderr, cfg)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "yamltr",
		Short: i18n.T("Translate the string values of YAML files"),
		Long: `yamltr translates every string value of a YAML document into another
language. Keys, nesting, key order, comments and quoting are preserved;
template variables such as {name}, %count% and <b> are never translated.

Commands:
  translate   Translate a YAML file
  inspect     List translatable values and their protection status
  backends    List available translation backends
  auth        Manage stored backend credentials

Backends:
  google         Google Translate (default, no key needed)
  openai         OpenAI chat completions (API key)
  groq           Groq (API key)
  ollama         Ollama local server
  custom-openai  Custom OpenAI-compatible endpoint
  gemini         Google Gemini (API key)
  passthrough    No translation (dry runs)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (or YAMLTR_LOG_LEVEL)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "Load environment variables from this dotenv file (default: .env if present)")

	root.AddCommand(
		newTranslateCmd(a),
		newInspectCmd(a),
		newBackendsCmd(a),
		newAuthCmd(a),
		newVersionCmd(a),
	)

	return root
}

func main() {
	i18n.Init("")

	a := newApp(os.Stdout, os.Stderr)
	if err := newRootCmd(a).Execute(); err != nil {
		a.log.Error(i18n.T("Failed"), logging.Err(err))
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "yamltr version %s\n", version)
			fmt.Fprintf(a.stdout, "  commit:    %s\n", commit)
			fmt.Fprintf(a.stdout, "  built:     %s\n", date)
			fmt.Fprintf(a.stdout, "  locale:    %s (available: %s)\n", i18n.Lang(), strings.Join(i18n.Available(), ", "))
		},
	}
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

type translateArgs struct {
	input, output  string
	source, target string
	workers        int
	configPath     string
	backendID      string
	apiKey         string
	model, baseURL string
	proxy          string
	timeout        time.Duration
	protectedMatch string
	indent         int
	dryRun         bool
}

func newTranslateCmd(a *app) *cobra.Command {
	var ta translateArgs

	cmd := &cobra.Command{
		Use:   "translate",
		Short: i18n.T("Translate a YAML file"),
		Long: `Translate every string value of a YAML file.

Values under protected keys (see protected_keys.yml) are copied unchanged.
Template variables are masked before translation and restored afterwards.
A value the backend fails on keeps its original text; the run continues.

Examples:
  # Translate English to German with Google Translate
  yamltr translate -i en.yml -o de.yml -s en -t de

  # Use four workers (one job per top-level key)
  yamltr translate -i en.yml -o fr.yml -s en -t fr -w 4

  # Use a local Ollama model
  yamltr translate -i en.yml -o es.yml -s en -t es --backend ollama --model qwen2.5

  # Show masking and protection without calling any backend
  yamltr translate -i en.yml -o out.yml -s en -t de --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			_, err := a.runTranslate(ctx, ta)
			return err
		},
	}

	// Files and languages
	cmd.Flags().StringVarP(&ta.input, "input", "i", "", "Input YAML file (required)")
	cmd.Flags().StringVarP(&ta.output, "output", "o", "", "Output YAML file (required)")
	cmd.Flags().StringVarP(&ta.source, "source", "s", "", "Source language code, or auto (required)")
	cmd.Flags().StringVarP(&ta.target, "target", "t", "", "Target language code (required)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")

	// Concurrency
	cmd.Flags().IntVarP(&ta.workers, "workers", "w", 1, "Number of concurrent workers")

	// Configuration
	cmd.Flags().StringVar(&ta.configPath, "config", config.FileName, "Configuration file")
	cmd.Flags().Var((*matchModeFlag)(&ta.protectedMatch), "protected-match", "Protected key matching: key or path (overrides config)")
	cmd.Flags().IntVar(&ta.indent, "indent", 0, "Output indentation in spaces (0 = config value)")
	cmd.Flags().BoolVar(&ta.dryRun, "dry-run", false, "Use the passthrough backend; output is still written")

	// Backend selection
	cmd.Flags().StringVar(&ta.backendID, "backend", "", "Translation backend (overrides config): "+strings.Join(backend.IDs(), ", "))
	cmd.Flags().StringVar(&ta.apiKey, "api-key", "", "API key (or YAMLTR_API_KEY env var)")
	cmd.Flags().StringVar(&ta.model, "model", "", "Model name for LLM backends")
	cmd.Flags().StringVar(&ta.baseURL, "base-url", "", "Custom API base URL")

	// Network
	cmd.Flags().StringVar(&ta.proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	cmd.Flags().DurationVar(&ta.timeout, "timeout", 0, "Request timeout (0 = backend default)")

	_ = cmd.RegisterFlagCompletionFunc("backend", completeBackends)
	_ = cmd.RegisterFlagCompletionFunc("protected-match", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"key\tnearest parent key", "path\tdotted path prefix"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func completeBackends(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	providers := backend.DefaultProviders()
	out := make([]string, 0, len(providers))
	for _, id := range backend.IDs() {
		out = append(out, id+"\t"+providers[id].Name)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// loadRunConfig reads the config file and applies the command-line overrides.
func loadRunConfig(log *slog.Logger, ta translateArgs) (*config.Config, error) {
	cfg := config.LoadOrDefault(ta.configPath, log)
	if cfg.Source != "" {
		log.Info(i18n.T("Loaded configuration"), "file", cfg.Source,
			"protected_keys", len(cfg.ProtectedKeys), "match", cfg.ProtectedMatch)
	}

	if ta.backendID != "" {
		cfg.Backend = ta.backendID
	}
	if ta.dryRun {
		cfg.Backend = backend.ProviderPassthrough
	}
	if ta.apiKey != "" {
		cfg.APIKey = ta.apiKey
	}
	if ta.model != "" {
		cfg.Model = ta.model
	}
	if ta.baseURL != "" {
		cfg.BaseURL = ta.baseURL
	}
	if ta.proxy != "" {
		cfg.Proxy = ta.proxy
	}
	if ta.timeout != 0 {
		cfg.Timeout = ta.timeout
	}
	if ta.protectedMatch != "" {
		cfg.ProtectedMatch = ta.protectedMatch
	}
	if ta.indent != 0 {
		cfg.Indent = ta.indent
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// backendConfig resolves the credentials of the configured backend.
func backendConfig(cfg *config.Config) backend.Config {
	bc := cfg.BackendConfig()
	bc.APIKey = settings.ResolveAPIKey(bc.ID, bc.APIKey)
	if bc.BaseURL == "" {
		bc.BaseURL = settings.GetBaseURL(bc.ID)
	}
	return bc
}

func (a *app) runTranslate(ctx context.Context, ta translateArgs) (translate.Stats, error) {
	var stats translate.Stats
	log := a.log.With("run", xid.New().String())

	source, err := langmeta.Normalize(ta.source, true)
	if err != nil {
		return stats, fmt.Errorf("--source: %w", err)
	}
	target, err := langmeta.Normalize(ta.target, false)
	if err != nil {
		return stats, fmt.Errorf("--target: %w", err)
	}
	if ta.workers < 1 {
		return stats, fmt.Errorf("--workers must be at least 1, got %d", ta.workers)
	}

	cfg, err := loadRunConfig(log, ta)
	if err != nil {
		return stats, err
	}

	be, err := backend.New(ctx, backendConfig(cfg))
	if err != nil {
		return stats, err
	}

	in, err := yamlfile.ParseFile(ta.input)
	if err != nil {
		return stats, err
	}
	total, filled, _ := in.Stats()
	log.Info(i18n.T("Loaded input"), "file", ta.input, "values", total, "non_blank", filled)

	var (
		mu       sync.Mutex
		fellBack []string
	)
	tr, err := translate.New(translate.Options{
		Backend: be,
		Source:  source,
		Target:  target,
		Protect: cfg.Protector(),
		Logger:  log,
		OnResult: func(path translate.Path, original string, r translate.Result) {
			if r.Outcome != translate.FellBack {
				return
			}
			mu.Lock()
			fellBack = append(fellBack, path.String())
			mu.Unlock()
		},
	})
	if err != nil {
		return stats, err
	}

	log.Info(i18n.T("Translating"), "backend", be.Name(),
		"source", langmeta.PromptName(source), "target", langmeta.PromptName(target),
		"workers", ta.workers)

	start := time.Now()
	doc, stats, err := tr.Document(ctx, in.Document(), ta.workers)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return stats, errors.New(i18n.T("interrupted, no output written"))
		}
		return stats, fmt.Errorf("translation aborted, no output written: %w", err)
	}

	out := in.WithRoot(doc)
	out.SetIndent(cfg.Indent)
	if err := out.WriteFile(ta.output); err != nil {
		return stats, err
	}
	log.Info(i18n.T("Saved output"), "file", ta.output)

	if len(fellBack) > 0 {
		sort.Strings(fellBack)
		log.Warn(i18n.T("Values kept in the source language"), "paths", fellBack)
	}
	log.Info(i18n.Nf("%d value translated", "%d values translated", stats.Translated),
		"skipped", stats.Skipped,
		"fell_back", stats.FellBack,
		"untouched", stats.Untouched,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return stats, nil
}

// ---------------------------------------------------------------------------
// inspect (read-only: translatable values and protection)
// ---------------------------------------------------------------------------

func newInspectCmd(a *app) *cobra.Command {
	var (
		input          string
		configPath     string
		protectedMatch string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: i18n.T("List translatable values and their protection status"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(input, translateArgs{configPath: configPath, protectedMatch: protectedMatch})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input YAML file (required)")
	_ = cmd.MarkFlagRequired("input")
	cmd.Flags().StringVar(&configPath, "config", config.FileName, "Configuration file")
	cmd.Flags().Var((*matchModeFlag)(&protectedMatch), "protected-match", "Protected key matching: key or path (overrides config)")

	return cmd
}

func (a *app) runInspect(input string, ta translateArgs) error {
	cfg, err := loadRunConfig(a.log, ta)
	if err != nil {
		return err
	}
	f, err := yamlfile.ParseFile(input)
	if err != nil {
		return err
	}
	protect := cfg.Protector()

	leaves := f.Leaves()
	width := 0
	for _, l := range leaves {
		width = max(width, len(strings.Join(l.Path, ".")))
	}

	protected := 0
	for _, l := range leaves {
		status := "translate"
		switch {
		case protect.Protected(translate.Path(l.Path)):
			status = "protected"
			protected++
		case strings.TrimSpace(l.Value) == "":
			status = "blank"
		}
		fmt.Fprintf(a.stdout, "%4d  %-*s  %-9s  %q\n", l.Line, width, strings.Join(l.Path, "."), status, l.Value)
	}

	total, filled, pct := f.Stats()
	fmt.Fprintf(a.stdout, "\n%s: %d, %s: %d (%.0f%%), %s: %d\n",
		i18n.T("values"), total, i18n.T("non-blank"), filled, pct, i18n.T("protected"), protected)
	return nil
}

// ---------------------------------------------------------------------------
// backends
// ---------------------------------------------------------------------------

func newBackendsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: i18n.T("List available translation backends"),
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			providers := backend.DefaultProviders()
			for _, id := range backend.IDs() {
				p := providers[id]
				var notes []string
				if p.Model != "" {
					notes = append(notes, "model: "+p.Model)
				}
				if p.NeedsKey {
					notes = append(notes, "API key required")
				}
				if env := settings.EnvVarForProvider(id); env != "" {
					notes = append(notes, "env: "+env)
				}
				fmt.Fprintf(a.stdout, "  %-14s %-30s %s\n", id, p.Name, strings.Join(notes, ", "))
			}
		},
	}
}

// ---------------------------------------------------------------------------
// auth (credential store)
// ---------------------------------------------------------------------------

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: i18n.T("Manage stored backend credentials"),
		Long: `Manage API keys and endpoints stored for translation backends.

Credentials are kept in $XDG_DATA_HOME/yamltr/auth.json (mode 0600) and are
used when neither --api-key, YAMLTR_API_KEY nor the backend's own environment
variable is set.

Examples:
  yamltr auth set --backend openai --key sk-...
  yamltr auth set --backend custom-openai --base-url http://llm.local/v1
  yamltr auth list
  yamltr auth remove --backend openai
  yamltr auth remove --all`,
	}

	cmd.AddCommand(
		newAuthSetCmd(a),
		newAuthListCmd(a),
		newAuthRemoveCmd(a),
	)
	return cmd
}

func newAuthSetCmd(a *app) *cobra.Command {
	var id, key, baseURL string

	cmd := &cobra.Command{
		Use:   "set",
		Short: i18n.T("Store an API key or endpoint for a backend"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := backend.DefaultProviders()[id]; !ok {
				return fmt.Errorf("unknown backend %q (available: %s)", id, strings.Join(backend.IDs(), ", "))
			}
			if key == "" && baseURL == "" {
				return errors.New("nothing to store: pass --key and/or --base-url")
			}
			if err := settings.SetAPIKey(id, key, baseURL); err != nil {
				return err
			}
			a.log.Info(i18n.T("Credentials saved"), "backend", id, "file", settings.FilePath())
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "backend", "", "Backend ID (required)")
	cmd.Flags().StringVar(&key, "key", "", "API key")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Custom API base URL")
	_ = cmd.MarkFlagRequired("backend")
	_ = cmd.RegisterFlagCompletionFunc("backend", completeBackends)
	return cmd
}

func newAuthListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   i18n.T("Show stored credentials"),
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			store := settings.Load()
			providers := backend.DefaultProviders()

			for _, id := range backend.IDs() {
				if id == backend.ProviderPassthrough {
					continue
				}
				status := i18n.T("not configured")
				if info := store[id]; info != nil {
					switch {
					case info.Key != "":
						status = fmt.Sprintf("%s (key: %s)", i18n.T("configured"), settings.MaskKey(info.Key))
					case info.BaseURL != "":
						status = fmt.Sprintf("%s (no key)", i18n.T("configured"))
					}
					if info.BaseURL != "" {
						status += "  endpoint: " + info.BaseURL
					}
				}
				if env := settings.EnvVarForProvider(id); env != "" && os.Getenv(env) != "" {
					status += fmt.Sprintf("  [%s set]", env)
				}
				fmt.Fprintf(a.stdout, "  %-14s %-22s %s\n", id, providers[id].Name, status)
			}

			if v := os.Getenv(config.EnvPrefix + "_API_KEY"); v != "" {
				fmt.Fprintf(a.stdout, "\n  %s_API_KEY: %s (overrides stored keys)\n", config.EnvPrefix, settings.MaskKey(v))
			}
		},
	}
}

func newAuthRemoveCmd(a *app) *cobra.Command {
	var (
		id  string
		all bool
	)

	cmd := &cobra.Command{
		Use:     "remove",
		Aliases: []string{"rm", "logout"},
		Short:   i18n.T("Remove stored credentials"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case all && id != "":
				return errors.New("--backend and --all are mutually exclusive")
			case all:
				if err := settings.RemoveAll(); err != nil {
					return err
				}
				a.log.Info(i18n.T("All credentials removed"))
			case id != "":
				if err := settings.Remove(id); err != nil {
					return err
				}
				a.log.Info(i18n.T("Credentials removed"), "backend", id)
			default:
				return errors.New("pass --backend ID or --all")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "backend", "", "Backend ID")
	cmd.Flags().BoolVar(&all, "all", false, "Remove all stored credentials")
	_ = cmd.RegisterFlagCompletionFunc("backend", completeBackends)
	return cmd
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// matchModeFlag is a flag value accepting "key" or "path".
type matchModeFlag string

var _ pflag.Value = (*matchModeFlag)(nil)

func (m *matchModeFlag) String() string { return string(*m) }

func (m *matchModeFlag) Set(s string) error {
	mode, err := translate.ParseMatchMode(s)
	if err != nil {
		return err
	}
	*m = matchModeFlag(mode)
	return nil
}

func (m *matchModeFlag) Type() string { return "key|path" }

// fileExists reports whether path is an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
