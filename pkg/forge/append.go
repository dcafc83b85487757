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

// Append writes producer output to the end of a file that must already exist.
type Append struct {
	producer Producer
	cfg      config
	forged   atomic.Bool
}

var _ Operation = (*Append)(nil)

// NewAppend binds producer to an append operation. It performs no I/O.
func NewAppend(producer Producer, options ...Option) *Append {
	return &Append{
		producer: producer,
		cfg:      newConfig(options),
	}
}

// Mode returns ModeAppend.
func (a *Append) Mode() Mode {
	return ModeAppend
}

// Forge appends the producer output to path. A missing path yields an
// *ExistenceError and nothing is created. If the producer fails the file is
// truncated back to its original length and the producer's error is returned
// as is.
func (a *Append) Forge(path string) error {
	if !a.forged.CompareAndSwap(false, true) {
		return ErrAlreadyForged
	}
	if a.producer == nil {
		return ErrNilProducer
	}

	path = filepath.Clean(path)
	logger := a.cfg.logger.WithFields(log.Fields{"path": path, "mode": ModeAppend.String()})

	info, err := a.cfg.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExistenceError{Mode: ModeAppend, Path: path}
		}
		return fmt.Errorf("forge: append %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("forge: append %s: is a directory", path)
	}

	// No O_CREATE: a file removed since Stat must not be recreated.
	file, err := a.cfg.fs.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExistenceError{Mode: ModeAppend, Path: path}
		}
		return fmt.Errorf("forge: append %s: %w", path, err)
	}

	sink := &countingWriter{w: file}
	produceErr := a.producer.Produce(sink)
	if produceErr != nil {
		if err := file.Truncate(info.Size()); err != nil {
			logger.WithError(err).Warn("truncate partial append")
		} else {
			logger.Debug("rolled back")
		}
	}
	closeErr := file.Close()

	if produceErr != nil {
		return produceErr
	}
	if closeErr != nil {
		return fmt.Errorf("forge: close %s: %w", path, closeErr)
	}

	logger.WithField("bytes", sink.n).Debug("forged")
	return nil
}
