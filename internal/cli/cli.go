package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"locline/internal/assets"
	"locline/internal/config"
	"locline/internal/export"
	"locline/internal/lineprovider"
	"locline/internal/pathref"
	"locline/internal/project"
	"locline/internal/reconcile"
	"locline/internal/source"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "locline",
		Short: "Localization project reconciliation and line serving",
		Long:  "Manages per-language localization records for a content project and serves localized, markup-parsed lines by stable ID.",
	}

	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(commitCmd())
	rootCmd.AddCommand(prepareCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the project localization record and verify its stored paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow()
		},
	}
}

func commitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit <edits.json>",
		Short: "Reconcile a working-set edits file against the project record and persist the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(args[0])
		},
	}
}

func prepareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare <line-id>...",
		Short: "Resolve a set of lines for the active language and report per-line failures",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			language, _ := cmd.Flags().GetString("language")
			withAssets, _ := cmd.Flags().GetBool("assets")
			return runPrepare(args, language, withAssets)
		},
	}
	cmd.Flags().String("language", "", "Override the active language for this run")
	cmd.Flags().Bool("assets", false, "Also resolve per-line assets")
	return cmd
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <language> <output-prefix>",
		Short: "Export a language's lines as a strings CSV plus a metadata CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args[0], args[1])
		},
	}
}

// editsFile is the on-disk shape of one commit: the working set plus the
// edit surface's change tracking.
type editsFile struct {
	BaseLanguage string      `json:"baseLanguage"`
	Entries      []editEntry `json:"entries"`
}

type editEntry struct {
	LanguageID   string `json:"languageID"`
	StringsFile  string `json:"stringsFile,omitempty"`
	AssetsFolder string `json:"assetsFolder,omitempty"`
	Modified     bool   `json:"modified,omitempty"`
}

// runShow handles the `show` command.
func runShow() error {
	cfg := config.Load()
	store := project.NewStore(cfg.ProjectFile)
	data, err := store.Load()
	if err != nil {
		return err
	}

	resolver := newResolver(cfg)
	fmt.Printf("base language: %s\n", data.BaseLanguage)
	for lang, info := range data.Localizations {
		fmt.Printf("%s:\n", lang)
		printStored(resolver, cfg.ProjectRoot, "strings", info.StringsPath)
		printStored(resolver, cfg.ProjectRoot, "assets", info.AssetsPath)
	}
	return nil
}

func printStored(resolver *pathref.Resolver, root, label, stored string) {
	if stored == "" {
		return
	}
	if _, err := resolver.ToReference(stored, root); err != nil {
		fmt.Printf("  %s: %s (BROKEN: %v)\n", label, stored, err)
		return
	}
	fmt.Printf("  %s: %s\n", label, stored)
}

// runCommit handles the `commit` command.
func runCommit(editsPath string) error {
	cfg := config.Load()

	b, err := os.ReadFile(editsPath)
	if err != nil {
		return fmt.Errorf("read edits file: %w", err)
	}
	var edits editsFile
	if err := json.Unmarshal(b, &edits); err != nil {
		return fmt.Errorf("decode edits file: %w", err)
	}

	workingSet := make([]project.Entry, 0, len(edits.Entries))
	modified := make(map[string]struct{})
	for _, e := range edits.Entries {
		workingSet = append(workingSet, project.Entry{
			LanguageID:   e.LanguageID,
			StringsFile:  e.StringsFile,
			AssetsFolder: e.AssetsFolder,
		})
		if e.Modified {
			modified[e.LanguageID] = struct{}{}
		}
	}
	if err := project.ValidateWorkingSet(workingSet); err != nil {
		return err
	}

	store := project.NewStore(cfg.ProjectFile)
	previous, err := store.Load()
	if err != nil {
		return err
	}

	newBase := edits.BaseLanguage
	if newBase == "" {
		newBase = cfg.DefaultLanguage
	}

	engine := reconcile.NewEngine(newResolver(cfg))
	result, err := engine.Commit(reconcile.Request{
		WorkingSet:          workingSet,
		NewBaseLanguage:     newBase,
		Previous:            previous,
		Modified:            modified,
		BaseLanguageChanged: previous.BaseLanguage != "" && previous.BaseLanguage != newBase,
		ProjectRoot:         cfg.ProjectRoot,
	})
	if err != nil {
		return err
	}

	if err := store.Save(result.Data); err != nil {
		return err
	}
	if result.NeedsBaseEntry {
		log.Info().Str("language", newBase).Msg("Working set has no base-language row; the edit surface should add one")
	}
	return nil
}

// runPrepare handles the `prepare` command.
func runPrepare(ids []string, language string, withAssets bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	data, err := project.NewStore(cfg.ProjectFile).Load()
	if err != nil {
		return err
	}

	src, closeSrc, err := openSource(ctx, cfg, data)
	if err != nil {
		return err
	}
	defer closeSrc()

	active := cfg.ActiveLanguage
	if language != "" {
		active = language
	}
	if active == "" {
		active = data.BaseLanguage
	}

	provCfg := lineprovider.Config{
		Language:     active,
		BaseLanguage: data.BaseLanguage,
		Workers:      cfg.WorkerCount,
	}

	var provider lineprovider.Provider
	if withAssets {
		resolver, err := assetResolver(cfg, data)
		if err != nil {
			return err
		}
		provider = lineprovider.NewAudioProvider(src, resolver, provCfg)
	} else {
		provider = lineprovider.NewTextProvider(src, provCfg)
	}

	provider.PrepareForLines(ctx, ids)
	if err := waitReady(ctx, provider); err != nil {
		return err
	}

	cache, _ := provider.(*lineprovider.Cache)
	for _, id := range ids {
		l, err := provider.LocalizedLine(id)
		if err != nil {
			fmt.Printf("%s: UNKNOWN (%v)\n", id, err)
			continue
		}
		name, _ := l.CharacterName()
		fmt.Printf("%s: [%s] %s\n", id, name, l.TextWithoutCharacterName().Text)
		if l.Asset != nil {
			ref := l.Asset.Path
			if ref == "" {
				ref = l.Asset.URL
			}
			fmt.Printf("  asset: %s\n", ref)
		}
		if cache != nil {
			if rerr := cache.ResolveError(id); rerr != nil {
				fmt.Printf("  degraded: %v\n", rerr)
			}
		}
	}
	return nil
}

// runExport handles the `export` command.
func runExport(language, outPrefix string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	data, err := project.NewStore(cfg.ProjectFile).Load()
	if err != nil {
		return err
	}

	src, closeSrc, err := openSource(ctx, cfg, data)
	if err != nil {
		return err
	}
	defer closeSrc()

	exp := export.New(src)

	stringsPath := outPrefix + ".csv"
	sf, err := os.Create(stringsPath)
	if err != nil {
		return fmt.Errorf("create strings file: %w", err)
	}
	defer sf.Close()
	count, err := exp.WriteStrings(ctx, language, sf)
	if err != nil {
		return err
	}

	metaPath := outPrefix + ".metadata.csv"
	mf, err := os.Create(metaPath)
	if err != nil {
		return fmt.Errorf("create metadata file: %w", err)
	}
	defer mf.Close()
	if err := exp.WriteMetadata(ctx, language, mf); err != nil {
		return err
	}

	log.Info().
		Int("lines", count).
		Str("strings", stringsPath).
		Str("metadata", metaPath).
		Msg("Export complete")
	return nil
}

// openSource builds the configured line source: SQLite when a path is set,
// a shared Postgres database when a URL is set, otherwise CSV strings
// tables referenced by the project record.
func openSource(ctx context.Context, cfg *config.Config, data project.Data) (source.Source, func(), error) {
	if cfg.SQLitePath != "" {
		s, err := source.OpenSQLiteSource(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	if cfg.DatabaseURL != "" {
		s, err := source.NewPGSource(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}

	s := source.NewTableSource(data.BaseLanguage)
	if cfg.BaseStringsFile != "" {
		if err := s.LoadTableFile(data.BaseLanguage, cfg.BaseStringsFile); err != nil {
			return nil, nil, err
		}
	}
	broken := s.LoadProject(data, cfg.ProjectRoot, newResolver(cfg))
	for lang, err := range broken {
		log.Warn().Err(err).Str("language", lang).Msg("Language loaded without strings table")
	}
	return s, func() {}, nil
}

// assetResolver builds the per-line asset resolver: remote when a base URL
// is configured, otherwise indexes from the project record's assets folders.
func assetResolver(cfg *config.Config, data project.Data) (lineprovider.AssetResolver, error) {
	if cfg.AssetBaseURL != "" {
		checker := assets.NewRemoteChecker(cfg.AssetBaseURL, cfg.AssetTimeout)
		return lineprovider.NewRemoteAssets(checker, ".ogg"), nil
	}

	local := lineprovider.NewLocalAssets()
	resolver := newResolver(cfg)
	for lang, info := range data.Localizations {
		if info.AssetsPath == "" {
			continue
		}
		dir, err := resolver.ToReference(info.AssetsPath, cfg.ProjectRoot)
		if err != nil {
			log.Warn().Err(err).Str("language", lang).Msg("Assets folder path is broken")
			continue
		}
		idx, err := assets.BuildIndex(dir)
		if err != nil {
			log.Warn().Err(err).Str("language", lang).Msg("Assets folder failed to index")
			continue
		}
		local.AddLanguage(lang, idx)
	}
	return local, nil
}

func newResolver(cfg *config.Config) *pathref.Resolver {
	mode := pathref.RelativeOnly
	if cfg.AllowPlaceholderPaths {
		mode = pathref.AllowPlaceholder
	}
	return pathref.NewResolver(mode)
}

// waitReady polls readiness until the prepare completes or the context is
// cancelled.
func waitReady(ctx context.Context, p lineprovider.Provider) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		if p.LinesAvailable() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}
