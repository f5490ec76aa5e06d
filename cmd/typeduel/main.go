// Package main provides the CLI entrypoint for typeduel.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeduel/internal/config"
	"github.com/verte-zerg/typeduel/internal/generator"
	"github.com/verte-zerg/typeduel/internal/keyboard"
	"github.com/verte-zerg/typeduel/internal/level"
	"github.com/verte-zerg/typeduel/internal/logging"
	"github.com/verte-zerg/typeduel/internal/model"
	"github.com/verte-zerg/typeduel/internal/results"
	"github.com/verte-zerg/typeduel/internal/resultsui"
	"github.com/verte-zerg/typeduel/internal/session"
	"github.com/verte-zerg/typeduel/internal/stats"
	"github.com/verte-zerg/typeduel/internal/tui"
	"github.com/verte-zerg/typeduel/internal/wordlist"
)

const version = "0.1.0"

const (
	defaultMode         = "letters"
	defaultPlayers      = 2
	defaultLang         = "en"
	defaultLevels       = 5
	defaultUnits        = 20
	defaultCaps         = 0.3
	defaultPunct        = 0.25
	defaultSetupTimeout = 60 * time.Second
	defaultLogLevel     = "info"
	defaultImportSize   = 10000
)

const defaultPunctSet = ".,!?;:\"'{}()[]-=/<>`"

var (
	playMode         string
	playPlayers      int
	playLang         string
	playLevels       int
	playUnits        int
	playCaps         float64
	playPunct        float64
	playPunctSet     string
	playSetupTimeout time.Duration
	playLogFile      string
	playLogLevel     string
	playNoRecord     bool
	playDB           string

	resultsMode  string
	resultsSince string
	resultsLast  int
	resultsPlain bool
	resultsDB    string

	importLang string
	importSize int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typeduel",
		Short:         "Split-keyboard typing duel for the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playMode, "mode", defaultMode, "session mode (letters|words)")
	rootCmd.Flags().IntVar(&playPlayers, "players", defaultPlayers, "number of players (1 or 2)")
	rootCmd.Flags().StringVar(&playLang, "lang", defaultLang, "word list language code")
	rootCmd.Flags().IntVar(&playLevels, "levels", defaultLevels, "generated level count")
	rootCmd.Flags().IntVar(&playUnits, "units", defaultUnits, "prompt units per generated level")
	rootCmd.Flags().Float64Var(&playCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1, words mode)")
	rootCmd.Flags().Float64Var(&playPunct, "punct", defaultPunct, "punctuation probability per word (0-1, words mode)")
	rootCmd.Flags().StringVar(&playPunctSet, "punct-set", defaultPunctSet, "punctuation set")
	rootCmd.Flags().DurationVar(&playSetupTimeout, "setup-timeout", defaultSetupTimeout, "abort setup after this long with no players (0 disables)")
	rootCmd.Flags().StringVar(&playLogFile, "log-file", "", "append JSON logs to this file (empty disables logging)")
	rootCmd.Flags().StringVar(&playLogLevel, "log-level", defaultLogLevel, "log level (trace|debug|info|warn|error)")
	rootCmd.Flags().BoolVar(&playNoRecord, "no-record", false, "do not store the session result")
	rootCmd.Flags().StringVar(&playDB, "db", config.DefaultDBPath(), "results database path")

	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newResultsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &playMode, fileCfg.Play.Mode)
	applyIntConfig(cmd, "players", &playPlayers, fileCfg.Play.Players)
	applyStringConfig(cmd, "lang", &playLang, fileCfg.Play.Lang)
	applyIntConfig(cmd, "levels", &playLevels, fileCfg.Play.Levels)
	applyIntConfig(cmd, "units", &playUnits, fileCfg.Play.UnitsPerLevel)
	applyFloatConfig(cmd, "caps", &playCaps, fileCfg.Play.CapsPct)
	applyFloatConfig(cmd, "punct", &playPunct, fileCfg.Play.PunctPct)
	applyStringConfig(cmd, "punct-set", &playPunctSet, fileCfg.Play.PunctSet)
	applyStringConfig(cmd, "log-file", &playLogFile, fileCfg.Play.LogFile)
	applyStringConfig(cmd, "log-level", &playLogLevel, fileCfg.Play.LogLevel)
	if err := applyDurationConfig(cmd, "setup-timeout", &playSetupTimeout, fileCfg.Play.SetupTimeout); err != nil {
		return err
	}

	record := true
	if fileCfg.Play.Record != nil {
		record = *fileCfg.Play.Record
	}
	if playNoRecord {
		record = false
	}

	cfg := model.Config{
		Mode:          model.Mode(playMode),
		Players:       playPlayers,
		Lang:          playLang,
		Levels:        playLevels,
		UnitsPerLevel: playUnits,
		CapsPct:       playCaps,
		PunctPct:      playPunct,
		PunctSet:      playPunctSet,
		SetupTimeout:  playSetupTimeout,
	}

	customLevels := len(fileCfg.Levels) > 0
	if err := config.Validate(cfg, customLevels); err != nil {
		return err
	}

	levels, err := buildLevels(cfg, fileCfg)
	if err != nil {
		return err
	}

	return runPlay(cfg, levels, record)
}

// buildLevels produces the level sequence: [[level]] blocks from the config
// file when present, otherwise a generated curriculum for the mode.
func buildLevels(cfg model.Config, fileCfg config.FileConfig) ([]level.Level, error) {
	if len(fileCfg.Levels) > 0 {
		if err := config.ValidateLevels(cfg.Mode, fileCfg.Levels); err != nil {
			return nil, err
		}
		levels := make([]level.Level, 0, len(fileCfg.Levels))
		for i, lc := range fileCfg.Levels {
			name := lc.Name
			if name == "" {
				name = fmt.Sprintf("level %d", i+1)
			}
			levels = append(levels, level.Level{Name: name, Units: lc.Units})
		}
		return levels, nil
	}

	gen := generator.New()
	if cfg.Mode == model.ModeLetters {
		return gen.LetterCurriculum(cfg.Levels, cfg.UnitsPerLevel), nil
	}

	wordPath := config.DefaultWordListPath(cfg.Lang)
	words, err := wordlist.LoadWords(wordPath)
	if err != nil {
		return nil, wordListLoadError(cfg.Lang, wordPath, err)
	}
	levels, err := gen.WordCurriculum(words, cfg.Levels, cfg.UnitsPerLevel, cfg.CapsPct, cfg.PunctPct, []rune(cfg.PunctSet))
	if err != nil {
		return nil, fmt.Errorf("failed to build levels: %w", err)
	}
	return levels, nil
}

func runPlay(cfg model.Config, levels []level.Level, record bool) error {
	log, logCloser, err := logging.New(playLogFile, playLogLevel)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logCloser.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()

	seq, err := level.New(levels, cfg.Players)
	if err != nil {
		return fmt.Errorf("failed to build level sequence: %w", err)
	}

	src, err := keyboard.OpenAll(log, cfg.Players)
	if err != nil {
		return fmt.Errorf("failed to open keyboards: %w", err)
	}
	// The runner owns src from here and closes it on every exit path.

	machine := session.NewMachine(log, cfg, seq)
	notifier := session.NewNotifier()
	uiNotes := notifier.Subscribe()

	var recDone chan error
	if record {
		st, err := results.Open(playDB)
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("failed to open results db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close results db: %v\n", cerr)
			}
		}()
		recNotes := notifier.Subscribe()
		recorder := results.NewRecorder(log, st)
		recDone = make(chan error, 1)
		// Background context: the insert must survive session cancellation.
		go func() { recDone <- recorder.Run(context.Background(), recNotes) }()
	}

	runner := session.NewRunner(log, cfg, src, machine, notifier)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type runResult struct {
		rec model.SessionRecord
		err error
	}
	runDone := make(chan runResult, 1)
	go func() {
		rec, err := runner.Run(ctx)
		runDone <- runResult{rec: rec, err: err}
	}()

	program := tea.NewProgram(tui.NewModel(cfg, levels), tea.WithAltScreen())
	go func() {
		for note := range uiNotes {
			program.Send(tui.NoteMsg(note))
		}
		program.Send(tui.DoneMsg{})
	}()

	_, uiErr := program.Run()
	cancel()
	res := <-runDone
	if recDone != nil {
		if rerr := <-recDone; rerr != nil {
			logErrf("%v\n", rerr)
		}
	}
	if uiErr != nil {
		return fmt.Errorf("failed to run TUI: %w", uiErr)
	}
	if res.err != nil {
		if errors.Is(res.err, session.ErrAborted) || errors.Is(res.err, context.Canceled) {
			logErrln("Session aborted.")
			return nil
		}
		return res.err
	}
	return stats.RenderSessionSummary(os.Stdout, res.rec)
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List detected keyboards",
		Args:  cobra.NoArgs,
		RunE:  runDevicesCmd,
	}
}

func runDevicesCmd(cmd *cobra.Command, _ []string) error {
	devices, err := keyboard.ListKeyboards()
	if err != nil {
		if errors.Is(err, keyboard.ErrNoKeyboards) {
			logErrln("No keyboards found. Check read access to /dev/input (input group membership).")
		}
		return err
	}
	for _, d := range devices {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  (%s)\n", d.ID, d.Name, d.Path); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Browse recorded sessions",
		Args:  cobra.NoArgs,
		RunE:  runResultsCmd,
	}
	cmd.Flags().StringVar(&resultsMode, "mode", "", "mode filter (letters|words)")
	cmd.Flags().StringVar(&resultsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&resultsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().BoolVar(&resultsPlain, "plain", false, "print tables to stdout instead of the TUI")
	cmd.Flags().StringVar(&resultsDB, "db", config.DefaultDBPath(), "results database path")
	return cmd
}

func runResultsCmd(_ *cobra.Command, _ []string) error {
	if resultsMode != "" {
		if _, err := model.ParseMode(resultsMode); err != nil {
			return fmt.Errorf("invalid --mode value: %w", err)
		}
	}
	var sinceTime *time.Time
	if resultsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", resultsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if resultsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	filter := model.ResultsFilter{
		Mode:  resultsMode,
		Since: sinceTime,
		Last:  resultsLast,
	}

	st, err := results.Open(resultsDB)
	if err != nil {
		return fmt.Errorf("failed to open results db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close results db: %v\n", cerr)
		}
	}()

	if resultsPlain {
		rows, err := st.ListRows(context.Background(), filter)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		if err := stats.RenderHistory(os.Stdout, rows); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if len(rows) > 0 {
			if _, err := fmt.Fprintln(os.Stdout, ""); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			if err := stats.RenderProgress(os.Stdout, rows, 0, 0); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	}

	program := tea.NewProgram(resultsui.NewModel(st, filter), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run results TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a word list (one word per line)",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importLang, "lang", defaultLang, "language code to import as")
	cmd.Flags().IntVar(&importSize, "size", defaultImportSize, "maximum number of words to keep (0 keeps all)")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	if importSize < 0 {
		return fmt.Errorf("--size must be >= 0")
	}
	lang := strings.TrimSpace(strings.ToLower(importLang))
	if lang == "" {
		return fmt.Errorf("--lang must not be empty")
	}
	dst := config.DefaultWordListPath(lang)
	n, err := wordlist.Import(args[0], dst, lang, importSize)
	if err != nil {
		return fmt.Errorf("failed to import word list: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words to %s\n", n, dst); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil {
		return nil
	}
	if cmd.Flags().Changed(name) {
		return nil
	}
	parsed, err := time.ParseDuration(*value)
	if err != nil {
		return fmt.Errorf("invalid %s in config: %w", name, err)
	}
	*target = parsed
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typeduel configuration
# Uncomment a value to enable it. CLI flags override config values.

[play]
# mode = %q           # letters or words
# players = %d              # 1 or 2
# lang = %q              # Word list language code
# levels = %d               # Generated level count
# units = %d               # Prompt units per generated level
# caps = %.2f              # Probability of capitalized first letter (0-1, words mode)
# punct = %.2f             # Punctuation probability per word (0-1, words mode)
# punct-set = %q
# setup-timeout = %q      # Abort setup after this long with no players ("0s" disables)
# record = true            # Store completed sessions
# log-file = ""            # Append JSON logs here (empty disables logging)
# log-level = %q        # trace|debug|info|warn|error

# Hand-written levels replace the generated sequence entirely.
# Letters mode expects single-character units; words mode whole tokens.
#
# [[level]]
# name = "home row"
# units = ["a", "s", "d", "f", "j", "k", "l", ";"]
`,
		defaultMode,
		defaultPlayers,
		defaultLang,
		defaultLevels,
		defaultUnits,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		defaultSetupTimeout.String(),
		defaultLogLevel,
	)
}

func wordListLoadError(lang, path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word list: %v", err),
		fmt.Sprintf("expected word list at: %s", path),
		fmt.Sprintf("language %q not found", lang),
		fmt.Sprintf("Import one: typeduel import <file> --lang %s", lang),
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
