package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rocjay1/finpulse/internal/api"
	"github.com/rocjay1/finpulse/internal/config"
	"github.com/rocjay1/finpulse/internal/identity"
	"github.com/rocjay1/finpulse/internal/logger"
	"github.com/rocjay1/finpulse/internal/models"
	"github.com/rocjay1/finpulse/internal/services"
	"github.com/rocjay1/finpulse/internal/session"
	"github.com/rs/zerolog"
)

// sourceOptions says where the initial transactions come from.
type sourceOptions struct {
	file     string
	local    bool
	restore  string
	language string
	industry string
	company  string
}

func (o *sourceOptions) apply(s models.Settings) models.Settings {
	if o.language != "" {
		s.Language = models.Language(o.language)
	}
	if o.industry != "" {
		s.Industry = models.Industry(o.industry)
	}
	if o.company != "" {
		s.CompanyName = o.company
	}
	return s
}

func (cli *CLI) loadConfig(console bool) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cli.cfgPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	level := cfg.Log.Level
	if cli.logLevel != "" {
		level = cli.logLevel
	}
	log := logger.New(logger.Options{Level: level, Console: console && cfg.Log.Console})
	return cfg, log, nil
}

// newSession builds a session and its optional storage integrations.
func newSession(ctx context.Context, cfg *config.Config, settings models.Settings, log zerolog.Logger) (*session.Session, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	client, err := api.NewClient(api.Options{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}, log)
	if err != nil {
		return nil, err
	}

	name := identity.SessionNamespace(cfg.Session.IDPrefix)
	deps := session.Dependencies{Remote: client, Logger: log}
	if cfg.Session.IDGenerator == "uuid" {
		deps.Generator = identity.UUIDs{}
	}

	if url := cfg.Storage.TableURL; url != "" {
		svc, err := services.NewSnapshotService(ctx, url, cfg.Storage.SnapshotTable, log)
		if err != nil {
			return nil, fmt.Errorf("failed to init snapshot service: %w", err)
		}
		deps.Snapshots = svc
	}
	if url := cfg.Storage.BlobURL; url != "" {
		svc, err := services.NewBlobService(url, cfg.Storage.ArchiveContainer, log)
		if err != nil {
			return nil, fmt.Errorf("failed to init blob service: %w", err)
		}
		deps.Archive = svc
	}
	if url := cfg.Storage.QueueURL; url != "" {
		svc, err := services.NewQueueService(url, cfg.Storage.EventsQueue, log)
		if err != nil {
			return nil, fmt.Errorf("failed to init queue service: %w", err)
		}
		deps.Events = svc
	}

	return session.New(ctx, name, settings, deps), nil
}

// populate fills the session from a snapshot, a local CSV or a remote upload.
func populate(ctx context.Context, sess *session.Session, opts *sourceOptions, log zerolog.Logger) error {
	switch {
	case opts.restore != "":
		n, err := sess.Restore(ctx, opts.restore)
		if err != nil {
			return err
		}
		log.Info().Str("snapshot", opts.restore).Int("count", n).Msg("restored snapshot")
		// Flags win over the snapshot's settings.
		if _, err := sess.SetSettings(opts.apply(sess.Settings())); err != nil {
			return err
		}
		return nil
	case opts.file == "":
		return fmt.Errorf("a file or --restore is required")
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", opts.file, err)
	}
	defer f.Close()

	var res *session.UploadResult
	if opts.local {
		res, err = sess.ImportCSV(f)
	} else {
		res, err = sess.Upload(ctx, filepath.Base(opts.file), f)
	}
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		log.Warn().Str("file", opts.file).Msg(w)
	}
	log.Info().Str("file", opts.file).Int("count", res.Count).Msg("loaded transactions")
	return nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}
