package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// SaveAtomic validates cfg and replaces the file at path with it. The
// previous file survives as path+".bak". Concurrent savers are serialized
// through path+".lock".
func SaveAtomic(path string, cfg Config) error {
	cfg, vr := NormalizeAndValidate(cfg)
	if !vr.OK() {
		return vr.Err()
	}
	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	prev, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := writeAtomic(path+".bak", prev); err != nil {
			return fmt.Errorf("back up config: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return err
	}
	return writeAtomic(path, out)
}

// writeAtomic lands b at path through a synced temp file in the same
// directory, so readers see the old content or the new, never a prefix.
func writeAtomic(path string, b []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
