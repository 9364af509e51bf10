package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"callsearch/internal/artifact"
	"callsearch/internal/config"
	"callsearch/internal/model"
	"callsearch/internal/navigator"
	"callsearch/internal/search"
	"callsearch/internal/store"
	"callsearch/internal/timestamp"
	"callsearch/internal/ui"
)

var (
	configPath string
	verbose    bool

	cfg    config.Config
	logger = zap.NewNop()
)

// sourceFlags select where call artifacts come from.
type sourceFlags struct {
	call   string
	dir    string
	url    string
	cached bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.call, "call", "", "call to open, e.g. acdc/2025-01-30_151")
	cmd.Flags().StringVar(&f.dir, "dir", "", "read artifacts from this directory")
	cmd.Flags().StringVar(&f.url, "url", "", "fetch artifacts from this base URL")
	cmd.Flags().BoolVar(&f.cached, "cached", false, "read artifacts from the local cache")
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "callsearch",
		Short:         "Search Ethereum dev-call transcripts, chat, agendas and EIPs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}

			zc := zap.NewProductionConfig()
			if verbose {
				zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			// The browser owns the terminal, so it logs to a file.
			if cmd.Name() == "browse" {
				if err := os.MkdirAll(cfg.Home, 0o755); err != nil {
					return fmt.Errorf("create home: %w", err)
				}
				zc.OutputPaths = []string{filepath.Join(cfg.Home, "browse.log")}
			}
			logger, err = zc.Build()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.AddCommand(searchCmd(), eipsCmd(), ingestCmd(), callsCmd(), historyCmd(), browseCmd(), configCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "callsearch: %v\n", err)
		os.Exit(1)
	}
}

// --- search ---

func searchCmd() *cobra.Command {
	var (
		src    sourceFlags
		filter string
		limit  int
		radius int
	)
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search one call's transcript, chat, agenda and action items",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flt, err := model.ParseFilter(filter)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("context") {
				radius = cfg.Search.ContextRadius
			}
			query := strings.Join(args, " ")

			b, err := loadCall(cmd.Context(), src)
			if err != nil {
				return err
			}
			engine := search.New(search.Sources{
				Transcript: b.Transcript,
				Chat:       b.Chat,
				Payloads:   b.Payloads,
			}, func() timestamp.SyncConfig { return b.Config }, search.WithLogger(logger))

			results := engine.Search(query, flt)
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No results.")
				return nil
			}
			logQuery(model.QueryLogEntry{
				SessionID:   "cli",
				CallKey:     b.Ref.Key(),
				Query:       query,
				Filter:      string(flt),
				ResultCount: len(results),
			})
			if limit > 0 && len(results) > limit {
				results = results[:limit]
			}
			printResults(cmd.OutOrStdout(), engine, results, radius)
			return nil
		},
	}
	src.register(cmd)
	_ = cmd.MarkFlagRequired("call")
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "all, transcript, chat, agenda or action")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max results (0 for all)")
	cmd.Flags().IntVarP(&radius, "context", "C", 0, "lines of context around transcript and chat hits")
	return cmd
}

// --- eips ---

func eipsCmd() *cobra.Command {
	var (
		dir  string
		save bool
	)
	cmd := &cobra.Command{
		Use:   "eips QUERY",
		Short: "Search EIP records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				eips []model.EIP
				err  error
			)
			if dir != "" {
				eips, err = artifact.LoadEIPs(dir, logger)
				if err == nil && save {
					err = withStore(func(st *store.Store) error { return st.SaveEIPs(eips) })
				}
			} else {
				err = withExistingStore(func(st *store.Store) error {
					eips, err = st.LoadEIPs()
					return err
				})
			}
			if err != nil {
				return err
			}

			results := search.SearchEIPs(eips, strings.Join(args, " "))
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No results.")
				return nil
			}
			printEIPs(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory of EIP JSON files (default: cached EIPs)")
	cmd.Flags().BoolVar(&save, "save", false, "cache the EIPs read from --dir")
	return cmd
}

// --- ingest ---

func ingestCmd() *cobra.Command {
	var (
		src sourceFlags
		all bool
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch call artifacts into the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if src.cached {
				return errors.New("ingest reads from --dir or --url, not the cache")
			}
			if !all {
				if src.call == "" {
					return errors.New("--call or --all is required")
				}
				b, err := loadCall(cmd.Context(), src)
				if err != nil {
					return err
				}
				if b.Count() == 0 {
					return fmt.Errorf("no artifacts found for %s", b.Ref)
				}
				if err := withStore(func(st *store.Store) error { return st.SaveBundle(b) }); err != nil {
					return fmt.Errorf("save %s: %w", b.Ref, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cached %s (%d artifacts).\n", b.Ref, b.Count())
				return nil
			}

			if src.dir == "" {
				return errors.New("--all needs --dir")
			}
			dir := artifact.DirSource{Root: src.dir}
			refs, err := dir.Refs()
			if err != nil {
				return err
			}
			var cached int
			err = withStore(func(st *store.Store) error {
				for _, ref := range refs {
					b := artifact.Load(cmd.Context(), dir, ref, logger)
					if err := cmd.Context().Err(); err != nil {
						return err
					}
					if b.Count() == 0 {
						continue
					}
					if err := st.SaveBundle(b); err != nil {
						return fmt.Errorf("save %s: %w", ref, err)
					}
					cached++
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cached %d of %d calls.\n", cached, len(refs))
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "cache every call found under --dir")
	return cmd
}

// --- calls ---

func callsCmd() *cobra.Command {
	var (
		since, until string
		limit        int
	)
	cmd := &cobra.Command{
		Use:   "calls",
		Short: "List cached calls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := model.ParseTimeFilter(since, until)
			if err != nil {
				return err
			}
			var calls []model.CallSummary
			if err := withExistingStore(func(st *store.Store) error {
				calls, err = st.ListCalls(limit, tf)
				return err
			}); err != nil {
				return err
			}
			if len(calls) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cached calls.")
				return nil
			}
			for _, c := range calls {
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s  %d artifacts\n", c.Key, c.Date, c.Artifacts)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&since, "since", "", "only calls on or after (2w, 3d, 2025-01-30)")
	cmd.Flags().StringVar(&until, "until", "", "only calls on or before")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "max calls")
	return cmd
}

// --- history ---

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []model.QueryLogEntry
			if err := withExistingStore(func(st *store.Store) error {
				var err error
				entries, err = st.RecentQueries(limit)
				return err
			}); err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No searches yet.")
				return nil
			}
			printHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max entries")
	return cmd
}

// --- browse ---

func browseCmd() *cobra.Command {
	var (
		src   sourceFlags
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse a call interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := artifact.ParseCallRef(src.call)
			if err != nil {
				return err
			}
			source, closeSource, err := openSource(src)
			if err != nil {
				return err
			}
			defer closeSource()

			// A cached call already holds the store open.
			record := logQuery
			if cached, ok := source.(store.Source); ok {
				record = func(e model.QueryLogEntry) {
					if err := cached.Store.LogQuery(e); err != nil {
						logger.Warn("query not logged", zap.Error(err))
					}
				}
			}

			m := ui.New(source, ref,
				ui.WithLogger(logger),
				ui.WithTiming(navigator.Timing(cfg.Sync)),
				ui.WithSearchDebounce(cfg.Search.Debounce),
				ui.WithSearchLog(record),
			)

			ctx, cancel := context.WithCancel(cmd.Context())
			watching := make(chan struct{})
			defer func() {
				cancel()
				<-watching
			}()
			if dir, ok := source.(artifact.DirSource); ok && watch {
				callDir := filepath.Dir(dir.Path(ref, artifact.FileTranscript))
				go func() {
					defer close(watching)
					err := artifact.Watch(ctx, callDir, func(name string) {
						if err := m.Page().Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
							logger.Warn("refresh failed", zap.String("file", name), zap.Error(err))
						}
					}, logger)
					if err != nil {
						logger.Warn("watch stopped", zap.Error(err))
					}
				}()
			} else {
				close(watching)
			}

			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			m.Page().Close()
			return err
		},
	}
	src.register(cmd)
	_ = cmd.MarkFlagRequired("call")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload when artifacts in --dir change")
	return cmd
}

// --- config ---

func configCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if write {
				if err := cfg.Save(configPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
				return nil
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# home: %s\n%s", cfg.Home, data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write the effective configuration to --config")
	return cmd
}

// --- Helpers ---

func loadCall(ctx context.Context, f sourceFlags) (*artifact.Bundle, error) {
	ref, err := artifact.ParseCallRef(f.call)
	if err != nil {
		return nil, err
	}
	src, closeSource, err := openSource(f)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	b := artifact.Load(ctx, src, ref, logger)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

// openSource picks the artifact source: the cache, an explicit directory or
// URL, then the configured mirror directory, then the configured site.
func openSource(f sourceFlags) (artifact.Source, func(), error) {
	noop := func() {}
	switch {
	case f.cached:
		st, err := openExistingStore()
		if err != nil {
			return nil, nil, err
		}
		return store.Source{Store: st}, func() { st.Close() }, nil
	case f.dir != "":
		return artifact.DirSource{Root: f.dir}, noop, nil
	case f.url != "":
		return newHTTPSource(f.url), noop, nil
	case cfg.ArtifactDir != "":
		return artifact.DirSource{Root: cfg.MirrorDir()}, noop, nil
	default:
		return newHTTPSource(cfg.ArtifactURL), noop, nil
	}
}

func newHTTPSource(base string) *artifact.HTTPSource {
	var opts []artifact.HTTPOption
	if cfg.RateLimit > 0 {
		opts = append(opts, artifact.WithRateLimit(cfg.RateLimit, len(artifact.Files)))
	}
	return artifact.NewHTTP(base, opts...)
}

func openExistingStore() (*store.Store, error) {
	dbPath := cfg.DBPath()
	if !fileExists(dbPath) {
		return nil, fmt.Errorf("no cache found at %s; run 'callsearch ingest' first", dbPath)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := st.InitSchema(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// withStore runs fn against the cache, creating it if needed.
func withStore(fn func(*store.Store) error) error {
	if err := os.MkdirAll(cfg.Home, 0o755); err != nil {
		return fmt.Errorf("create home: %w", err)
	}
	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.InitSchema(); err != nil {
		return err
	}
	return fn(st)
}

// withExistingStore runs fn against the cache, failing if there is none.
func withExistingStore(fn func(*store.Store) error) error {
	st, err := openExistingStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// logQuery records a search in the history when a cache exists. Failures
// are logged and otherwise ignored.
func logQuery(e model.QueryLogEntry) {
	if !fileExists(cfg.DBPath()) {
		return
	}
	if err := withExistingStore(func(st *store.Store) error { return st.LogQuery(e) }); err != nil {
		logger.Warn("query not logged", zap.Error(err))
	}
}

func printResults(w io.Writer, engine *search.Engine, results []model.SearchResult, radius int) {
	for i, r := range results {
		who := ""
		if r.Speaker != "" {
			who = "  " + r.Speaker
		}
		fmt.Fprintf(w, "[%d] %-10s %s  score=%d%s\n", i+1, r.Type, r.Timestamp, r.MatchScore, who)
		fmt.Fprintf(w, "    %s\n", truncate(r.Text, 200))
		if r.Context != "" {
			fmt.Fprintf(w, "    (%s)\n", r.Context)
		}
		if radius > 0 {
			for _, line := range engine.Context(r, radius) {
				fmt.Fprintf(w, "      %s\n", truncate(line, 200))
			}
		}
		fmt.Fprintln(w)
	}
}

func printEIPs(w io.Writer, results []search.EIPResult) {
	for i, r := range results {
		fmt.Fprintf(w, "[%d] EIP-%d  score=%d  %s\n", i+1, r.EIP.ID, r.Score, r.EIP.Title)
		for _, fr := range r.EIP.ForkRelationships {
			if status := fr.CurrentStatus(); status != "" {
				fmt.Fprintf(w, "    %s: %s\n", fr.ForkName, status)
			}
		}
		fmt.Fprintf(w, "    matched: %s\n\n", strings.Join(r.Fields, ", "))
	}
}

func printHistory(w io.Writer, entries []model.QueryLogEntry) {
	for _, e := range entries {
		call := e.CallKey
		if call == "" {
			call = "-"
		}
		filter := e.Filter
		if filter == "" {
			filter = "all"
		}
		fmt.Fprintf(w, "%s  %-28s %-10s %3d  %s\n",
			e.LoggedAt.Local().Format("2006-01-02 15:04"), call, filter, e.ResultCount, e.Query)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
