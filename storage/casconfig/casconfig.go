package casconfig

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/composable-auto-assessment/generator/storage"
	"github.com/composable-auto-assessment/generator/storage/casregistry"
)

// Config describes how to open one or more archive backends via casregistry.
// Binaries still need to link the desired backends via blank imports.
//
// WritePolicy values:
// - "first" (default): write only to the first backend; reads fall back in order
// - "all": write to all backends and require CID equality (see storage.ReplicatingCAS)
//
// Example:
//
//	write_policy = "all"
//
//	[[backends]]
//	name = "localfs"
//	config = { localfs-dir = "/var/lib/qrgen/archive" }
//
//	[[backends]]
//	name = "grpc"
//	id = "offsite"
//	config = { grpc-target = "archive.internal:7777" }
type Config struct {
	WritePolicy string          `toml:"write_policy,omitempty"`
	Backends    []BackendConfig `toml:"backends"`
}

type BackendConfig struct {
	// Name is the casregistry backend to open (e.g. "grpc", "localfs").
	Name string `toml:"name"`
	// ID is an optional alias used in reports. If empty, Name is used.
	ID     string            `toml:"id,omitempty"`
	Config map[string]string `toml:"config,omitempty"`
}

func (b BackendConfig) id() string {
	if b.ID != "" {
		return b.ID
	}
	return b.Name
}

// Enabled reports whether any backend is configured.
func (c Config) Enabled() bool { return len(c.Backends) > 0 }

// LoadFile reads a standalone TOML archive configuration.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, errors.New("casconfig: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("casconfig: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("casconfig: at least one backend is required")
	}
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		if b.Name == "" {
			return errors.New("casconfig: backend name is required")
		}
		if _, ok := seen[b.id()]; ok {
			return fmt.Errorf("casconfig: duplicate backend id %q", b.id())
		}
		seen[b.id()] = struct{}{}
	}
	switch c.WritePolicy {
	case "", "first", "all":
		return nil
	default:
		return fmt.Errorf("casconfig: invalid write_policy %q", c.WritePolicy)
	}
}

// Open opens an archive per config.
//
// If preferredBackend is non-empty, backends are reordered so it is first and
// therefore receives writes when WritePolicy is "first".
func (c Config) Open(usage casregistry.Usage, preferredBackend string, opts casregistry.Options) (storage.CAS, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	ordered := append([]BackendConfig(nil), c.Backends...)
	if preferredBackend != "" {
		idx := -1
		for i := range ordered {
			if ordered[i].Name == preferredBackend || ordered[i].ID == preferredBackend {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, nil, fmt.Errorf("casconfig: preferred backend %q not found in config", preferredBackend)
		}
		if idx != 0 {
			b := ordered[idx]
			copy(ordered[1:idx+1], ordered[0:idx])
			ordered[0] = b
		}
	}

	named := make([]storage.NamedCAS, 0, len(ordered))
	closers := make([]func() error, 0, len(ordered))
	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	for _, b := range ordered {
		cas, closeFn, err := casregistry.OpenWithConfig(b.Name, usage, b.Config, opts)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("casconfig: backend %q: %w", b.id(), err)
		}
		named = append(named, storage.NamedCAS{Name: b.id(), CAS: cas})
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
	}

	if len(named) == 1 {
		return named[0].CAS, closeAll, nil
	}

	switch c.WritePolicy {
	case "", "first":
		stores := make([]storage.CAS, 0, len(named))
		for _, n := range named {
			stores = append(stores, n.CAS)
		}
		return storage.MultiCAS{Stores: stores}, closeAll, nil
	case "all":
		return storage.ReplicatingCAS{Algorithm: opts.Algorithm, Backends: named}, closeAll, nil
	default:
		_ = closeAll()
		return nil, nil, fmt.Errorf("casconfig: invalid write_policy %q", c.WritePolicy)
	}
}
