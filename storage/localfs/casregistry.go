package localfs

import (
	"flag"
	"fmt"

	"github.com/composable-auto-assessment/generator/storage"
	"github.com/composable-auto-assessment/generator/storage/casregistry"
)

const dirKey = "localfs-dir"

var flagDir string

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:        "localfs",
		Description: "Local filesystem archive (directory)",
		Usage:       casregistry.UsageCLI | casregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagDir, dirKey, "", "Archive directory (for --backend=localfs)")
		},
		Open: func(opts casregistry.Options) (storage.CAS, func() error, error) {
			return open(flagDir, opts)
		},
		OpenConfig: func(cfg map[string]string, opts casregistry.Options) (storage.CAS, func() error, error) {
			return open(cfg[dirKey], opts)
		},
	})
}

func open(dir string, opts casregistry.Options) (storage.CAS, func() error, error) {
	if dir == "" {
		return nil, nil, fmt.Errorf("missing --%s", dirKey)
	}
	cas, err := New(dir, opts.Algorithm)
	if err != nil {
		return nil, nil, err
	}
	return cas, nil, nil
}
