package export

import (
	"bytes"
	"context"
	"sync"

	"github.com/datatrails/go-datatrails-common/logger"

	"github.com/forestrie/go-bespoke-array/profile"
)

// Coordinator owns one export run's worker goroutine, mirroring
// exportProfiles/waitOnExportProfiles: ExportProfiles flips the gate and
// starts the worker in the background; WaitOnExportProfiles blocks until
// it finishes, a no-op if the worker never started.
type Coordinator struct {
	tables  *profile.Tables
	statics profile.StaticStrings
	log     logger.Logger
	store   blobContainer

	mu      sync.Mutex
	started bool
	done    chan struct{}
	err     error
}

// NewCoordinator returns a Coordinator over tables. statics resolves
// interned string payloads for report rendering; it may be nil, in which
// case Str32 keys render category-only. log receives lifecycle and error
// events for this run; a nil log falls back to a no-op logger. store is
// consulted only if cfg's destination path names an Azure Blob container.
func NewCoordinator(tables *profile.Tables, statics profile.StaticStrings, log logger.Logger, store blobContainer) *Coordinator {
	if log == nil {
		logger.New("NOOP")
		log = logger.Sugar
	}
	return &Coordinator{tables: tables, statics: statics, log: log, store: store}
}

// ExportProfiles begins an export run: it flips tables' gate so every
// in-flight and future profiling call goes silent, then renders the report
// (and, if requested, a CBOR snapshot and a signature) on a background
// goroutine. If path is empty, or if export has already been started by
// an earlier call, ExportProfiles does nothing and returns immediately.
func (c *Coordinator) ExportProfiles(ctx context.Context, path string, opts ...Option) {
	if path == "" {
		return
	}

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	if !beginExport(c.tables) {
		c.started = true
		c.mu.Unlock()
		return
	}
	c.started = true
	c.done = make(chan struct{})
	c.mu.Unlock()

	cfg := newConfig(path, opts...)
	c.log.Infof("export: starting run, destination=%s", cfg.ExportLoggingArrayDataPath)

	go func() {
		defer close(c.done)
		c.err = c.run(ctx, cfg)
		if c.err != nil {
			c.log.Infof("export: run failed: %v", c.err)
		}
	}()
}

func (c *Coordinator) run(ctx context.Context, cfg *Config) error {
	id := newRunID()

	var report bytes.Buffer
	if err := WriteReport(&report, c.tables, c.statics); err != nil {
		return err
	}

	reportBytes := report.Bytes()
	if cfg.signer != nil {
		if err := c.signReportArtifact(ctx, cfg, id, reportBytes); err != nil {
			c.log.Infof("export: signing failed, continuing without signature: %v", err)
		}
	}

	if err := writeArtifact(ctx, c.store, cfg.ExportLoggingArrayDataPath, cfg.ExportLoggingArrayDataPath, reportBytes); err != nil {
		return err
	}
	c.log.Debugf("export: wrote report to %s", cfg.ExportLoggingArrayDataPath)

	if !cfg.Snapshot {
		return nil
	}
	snap, err := MarshalSnapshot(c.tables, c.statics)
	if err != nil {
		return err
	}
	snapPath := withRunSuffix(cfg.ExportLoggingArrayDataPath, id) + ".cbor"
	return writeArtifact(ctx, c.store, snapPath, snapPath, snap)
}

// signReportArtifact signs reportBytes and writes the signature artifact. A
// failure here is never fatal to the run: the caller logs it and continues,
// so a report is still produced even when signing is unavailable.
func (c *Coordinator) signReportArtifact(ctx context.Context, cfg *Config, id string, reportBytes []byte) error {
	sig, err := signReport(cfg.signer, cfg.keyIdentifier, reportBytes)
	if err != nil {
		return err
	}
	sigPath := withRunSuffix(cfg.ExportLoggingArrayDataPath, id) + ".sig"
	if err := writeArtifact(ctx, c.store, sigPath, sigPath, sig); err != nil {
		return err
	}
	c.log.Debugf("export: wrote signature to %s", sigPath)
	return nil
}

// WaitOnExportProfiles blocks until a started export run finishes, and
// returns any error the run encountered. It returns nil immediately if
// ExportProfiles was never called or never actually started the worker.
func (c *Coordinator) WaitOnExportProfiles() error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	return c.err
}
