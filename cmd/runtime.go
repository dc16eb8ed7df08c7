package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/asadullah4bls/evalai/internal/config"
	"github.com/asadullah4bls/evalai/internal/diagram"
	"github.com/asadullah4bls/evalai/internal/document"
	"github.com/asadullah4bls/evalai/internal/keywords"
	"github.com/asadullah4bls/evalai/internal/llm"
	"github.com/asadullah4bls/evalai/internal/logging"
	"github.com/asadullah4bls/evalai/internal/ocr"
	"github.com/asadullah4bls/evalai/internal/pipeline"
	"github.com/asadullah4bls/evalai/internal/quiz"
	"github.com/asadullah4bls/evalai/internal/quizgen"
	"github.com/asadullah4bls/evalai/internal/store"
)

// artifactStore is what both storage backends provide.
type artifactStore interface {
	quiz.ArtifactStore
	List(ctx context.Context) ([]string, error)
	Attempt(ctx context.Context, id string) (*quiz.Attempt, error)
}

// runtime is everything a command needs, opened from the resolved config.
type runtime struct {
	cfg       *config.Config
	log       *logging.Logger
	db        *store.Store
	artifacts artifactStore
	service   *quiz.Service

	mu      sync.Mutex
	closers []func() error
}

// loadConfig resolves the configuration and applies persistent flag
// overrides. --data-dir also moves the database unless --db is given.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	dataDir, _ := cmd.Flags().GetString("data-dir")
	dbPath, _ := cmd.Flags().GetString("db")
	if dataDir != "" {
		cfg.Store.DataDir = dataDir
		if dbPath == "" {
			cfg.Store.DBPath = ""
		}
	}
	if dbPath != "" {
		cfg.Store.DBPath = dbPath
	}
	if err := cfg.ResolvePaths(); err != nil {
		return nil, err
	}
	if mode, _ := cmd.Flags().GetString("log"); mode != "" {
		cfg.Logging.Mode = mode
	}
	return cfg, nil
}

// openEventStore opens only the SQLite event log.
func openEventStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openDB(cfg.Store.DBPath)
}

func openDB(path string) (*store.Store, error) {
	if err := store.EnsureDir(path); err != nil {
		return nil, fmt.Errorf("prepare database directory: %w", err)
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// openRuntime opens the event log, the artifact store, and a quiz service.
// The generation pipeline is built lazily, so commands that only read
// cached quizzes need no provider credentials.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Logging.Mode)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, log: log}
	rt.onClose(func() error { log.Sync(); return nil })

	if rt.db, err = openDB(cfg.Store.DBPath); err != nil {
		rt.Close()
		return nil, err
	}
	rt.onClose(rt.db.Close)

	switch cfg.Store.Backend {
	case "redis":
		rs, err := store.DialRedis(cmd.Context(), cfg.Store.RedisAddr, log)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.onClose(rs.Close)
		rt.artifacts = rs
	default:
		fs, err := store.NewFileStore(cfg.Store.DataDir, log)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.artifacts = fs
	}

	rt.service, err = quiz.NewService(quiz.Options{
		Store:  rt.artifacts,
		Source: &lazySource{build: rt.buildPipeline},
		Index:  store.AttemptIndex{Repo: rt.db.EventRepo()},
		Logger: log,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	log.Debug("runtime ready", "backend", cfg.Store.Backend, "data_dir", cfg.Store.DataDir, "db", cfg.Store.DBPath)
	return rt, nil
}

func (rt *runtime) onClose(f func() error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.closers = append(rt.closers, f)
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close() {
	rt.mu.Lock()
	closers := rt.closers
	rt.closers = nil
	rt.mu.Unlock()
	for i := len(closers) - 1; i >= 0; i-- {
		_ = closers[i]()
	}
}

// buildPipeline wires providers, OCR, and the curation stages from config.
func (rt *runtime) buildPipeline(ctx context.Context) (quiz.QuestionSource, error) {
	cfg := rt.cfg
	if err := cfg.ValidateLLM(); err != nil {
		return nil, err
	}
	lc := cfg.LLMConfig()
	repo := rt.db.EventRepo()

	provider, err := llm.NewProvider(ctx, lc, repo, rt.log)
	if err != nil {
		return nil, err
	}
	embedder, err := llm.NewEmbedder(ctx, lc, repo, rt.log)
	if err != nil {
		return nil, err
	}

	var diagrams *diagram.Extractor
	if cfg.OCR.Enabled {
		det, err := ocr.NewVisionDetector(ctx, cfg.OCR.CredentialsFile)
		if err != nil {
			return nil, err
		}
		rt.onClose(det.Close)
		diagrams = diagram.NewExtractor(det, cfg.Diagram, rt.log)
	}

	rt.log.Debug("generation pipeline ready",
		"provider", lc.Provider, "model", provider.ModelID(),
		"embedder", embedder.ModelID(), "ocr", cfg.OCR.Enabled)

	return pipeline.New(pipeline.Options{
		Loader:    document.NewFileLoader(rt.log),
		Diagrams:  diagrams,
		Extractor: keywords.NewExtractor(embedder, cfg.Extract, rt.log),
		Curator:   keywords.NewDeduplicator(embedder, cfg.Keywords, rt.log),
		Generator: quizgen.New(provider, cfg.Quizgen, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), rt.log),
		Logger:    rt.log,
	})
}

// lazySource builds its QuestionSource on first use. A failed build is
// retried on the next call.
type lazySource struct {
	build func(ctx context.Context) (quiz.QuestionSource, error)

	mu  sync.Mutex
	src quiz.QuestionSource
}

func (l *lazySource) Questions(ctx context.Context, documentID string, maxQuestions int) ([]quiz.Question, error) {
	l.mu.Lock()
	if l.src == nil {
		src, err := l.build(ctx)
		if err != nil {
			l.mu.Unlock()
			return nil, fmt.Errorf("set up generation: %w", err)
		}
		l.src = src
	}
	src := l.src
	l.mu.Unlock()
	return src.Questions(ctx, documentID, maxQuestions)
}

// documentIDs turns file arguments into absolute paths so the same files
// map to the same cached quiz from any working directory. Each must be an
// existing regular file.
func documentIDs(args []string) ([]string, error) {
	ids := make([]string, len(args))
	for i, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", a, err)
		}
		info, err := os.Stat(abs)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s not found", quiz.ErrInvalidInput, a)
		case err != nil:
			return nil, fmt.Errorf("stat %s: %w", a, err)
		case info.IsDir():
			return nil, fmt.Errorf("%w: %s is a directory", quiz.ErrInvalidInput, a)
		}
		ids[i] = abs
	}
	return ids, nil
}
