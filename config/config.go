// Package config loads the generator configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/composable-auto-assessment/generator/errs"
	"github.com/composable-auto-assessment/generator/fingerprint"
	"github.com/composable-auto-assessment/generator/metadata"
	"github.com/composable-auto-assessment/generator/payload"
	"github.com/composable-auto-assessment/generator/storage/casconfig"
	"github.com/composable-auto-assessment/generator/symbol"
)

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "qrgen.toml"

// Fingerprint selects the digest carried in payloads.
type Fingerprint struct {
	Algorithm string `toml:"algorithm"`
}

// Symbol configures the optical code. Version and Level determine the encoder
// capacity and must stay consistent with payload.MaxSize.
type Symbol struct {
	Version   int    `toml:"version"`
	Level     string `toml:"level"`
	ImageSize int    `toml:"image_size"`
}

// Output configures where and under which names images are written.
type Output struct {
	Dir    string `toml:"dir"`
	Prefix string `toml:"prefix"`
}

// Set describes the default page set emitted when the command line does not.
type Set struct {
	ID    int `toml:"id"`
	Pages int `toml:"pages"`
}

type Logging struct {
	Level string `toml:"level"`
}

// Config is the full generator configuration.
type Config struct {
	Fingerprint Fingerprint      `toml:"fingerprint"`
	Symbol      Symbol           `toml:"symbol"`
	Output      Output           `toml:"output"`
	Set         Set              `toml:"set"`
	Logging     Logging          `toml:"logging"`
	Archive     casconfig.Config `toml:"archive"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Fingerprint: Fingerprint{Algorithm: string(fingerprint.Default)},
		Symbol:      Symbol{Version: symbol.DefaultVersion, Level: "high", ImageSize: symbol.DefaultImageSize},
		Output:      Output{Dir: ".", Prefix: "qrcode"},
		Set:         Set{ID: 0, Pages: 1},
		Logging:     Logging{Level: "info"},
	}
}

// Load reads path on top of Default. An empty path falls back to
// DefaultFileName in the working directory; a missing default file is not an
// error, a missing explicit file is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return Config{}, errs.Wrap(errs.KindConfig, "config.Load", "parse "+path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, errs.Wrap(errs.KindConfig, "config.Load", "read "+path, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Fingerprint.Algorithm = strings.ToLower(strings.TrimSpace(c.Fingerprint.Algorithm))
	c.Symbol.Level = strings.ToLower(strings.TrimSpace(c.Symbol.Level))
	c.Output.Prefix = strings.TrimSpace(c.Output.Prefix)
	if strings.TrimSpace(c.Output.Dir) == "" {
		c.Output.Dir = "."
	}
	c.Output.Dir = filepath.Clean(c.Output.Dir)
	if c.Symbol.ImageSize <= 0 {
		c.Symbol.ImageSize = symbol.DefaultImageSize
	}
}

func (c Config) Validate() error {
	const op = "config.Validate"
	if _, err := fingerprint.ParseAlgorithm(c.Fingerprint.Algorithm); err != nil {
		return errs.Wrap(errs.KindConfig, op, "fingerprint.algorithm", err)
	}
	if _, err := symbol.ParseLevel(c.Symbol.Level); err != nil {
		return errs.Wrap(errs.KindConfig, op, "symbol.level", err)
	}
	if c.Symbol.Version < 0 || c.Symbol.Version > 40 {
		return errs.New(errs.KindConfig, op, fmt.Sprintf("symbol.version %d out of range [0,40]", c.Symbol.Version))
	}
	if enc, err := c.Encoder(); err == nil && enc.Capacity() < payload.Size {
		return errs.New(errs.KindConfig, op, fmt.Sprintf("symbol version %d level %q holds %d bytes, payloads are %d", c.Symbol.Version, c.Symbol.Level, enc.Capacity(), payload.Size))
	}
	if c.Output.Prefix == "" || strings.ContainsAny(c.Output.Prefix, `/\`) {
		return errs.New(errs.KindConfig, op, fmt.Sprintf("invalid output.prefix %q", c.Output.Prefix))
	}
	if _, err := metadata.New(c.Set.ID, c.Set.Pages); err != nil {
		return errs.Wrap(errs.KindConfig, op, "set", err)
	}
	if c.Archive.Enabled() {
		if err := c.Archive.Validate(); err != nil {
			return errs.Wrap(errs.KindConfig, op, "archive", err)
		}
	}
	return nil
}

// Algorithm returns the configured fingerprint algorithm.
func (c Config) Algorithm() fingerprint.Algorithm {
	alg, err := fingerprint.ParseAlgorithm(c.Fingerprint.Algorithm)
	if err != nil {
		return fingerprint.Default
	}
	return alg
}

// Encoder builds the QR encoder described by the symbol section.
func (c Config) Encoder() (*symbol.QREncoder, error) {
	level, err := symbol.ParseLevel(c.Symbol.Level)
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, "config.Encoder", "symbol.level", err)
	}
	return &symbol.QREncoder{Version: c.Symbol.Version, Level: level}, nil
}

// Writer builds the PNG writer described by the output and symbol sections.
func (c Config) Writer() *symbol.PNGWriter {
	return &symbol.PNGWriter{Dir: c.Output.Dir, Size: c.Symbol.ImageSize}
}
