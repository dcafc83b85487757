package forge

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/apex/log"
)

// Generate writes producer output to a path that must not exist yet.
type Generate struct {
	producer Producer
	cfg      config
	forged   atomic.Bool
}

var _ Operation = (*Generate)(nil)

// NewGenerate binds producer to a create-fresh operation. It performs no I/O.
func NewGenerate(producer Producer, options ...Option) *Generate {
	return &Generate{
		producer: producer,
		cfg:      newConfig(options),
	}
}

// Mode returns ModeCreate.
func (g *Generate) Mode() Mode {
	return ModeCreate
}

// Forge creates path exclusively and fills it with the producer output. An
// existing path yields an *ExistenceError and is left untouched. If the
// producer fails the partially written file is removed, along with any parent
// directories Forge created for it, and the producer's error is returned as
// is.
func (g *Generate) Forge(path string) error {
	if !g.forged.CompareAndSwap(false, true) {
		return ErrAlreadyForged
	}
	if g.producer == nil {
		return ErrNilProducer
	}

	path = filepath.Clean(path)
	logger := g.cfg.logger.WithFields(log.Fields{"path": path, "mode": ModeCreate.String()})

	dir := filepath.Dir(path)
	var createdDir string
	if g.cfg.createDirs && dir != "." {
		createdDir = g.firstMissingDir(dir)
		if err := g.cfg.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("forge: create %s: %w", dir, err)
		}
	}

	file, err := g.cfg.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, g.cfg.perm)
	if err != nil {
		g.removeDirs(dir, createdDir, logger)
		if errors.Is(err, fs.ErrExist) {
			return &ExistenceError{Mode: ModeCreate, Path: path}
		}
		return fmt.Errorf("forge: create %s: %w", path, err)
	}

	sink := &countingWriter{w: file}
	produceErr := g.producer.Produce(sink)
	closeErr := file.Close()

	if produceErr != nil || closeErr != nil {
		if err := g.cfg.fs.Remove(path); err != nil {
			logger.WithError(err).Warn("remove partial file")
		} else {
			g.removeDirs(dir, createdDir, logger)
			logger.Debug("rolled back")
		}
		if produceErr != nil {
			return produceErr
		}
		return fmt.Errorf("forge: close %s: %w", path, closeErr)
	}

	logger.WithField("bytes", sink.n).Debug("forged")
	return nil
}

// firstMissingDir returns the outermost ancestor of dir that does not exist
// yet, or "" when dir already exists.
func (g *Generate) firstMissingDir(dir string) string {
	missing := ""
	for d := dir; d != "." && d != filepath.Dir(d); d = filepath.Dir(d) {
		if _, err := g.cfg.fs.Stat(d); err == nil {
			break
		}
		missing = d
	}
	return missing
}

// removeDirs removes the directories between dir and createdDir that Forge
// created. Directories that are no longer empty are kept.
func (g *Generate) removeDirs(dir, createdDir string, logger *log.Entry) {
	if createdDir == "" {
		return
	}
	for d := dir; ; d = filepath.Dir(d) {
		if err := g.cfg.fs.Remove(d); err != nil {
			logger.WithError(err).WithField("dir", d).Debug("keep directory")
			return
		}
		if d == createdDir {
			return
		}
	}
}
