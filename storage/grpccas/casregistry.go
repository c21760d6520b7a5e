package grpccas

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/composable-auto-assessment/generator/storage"
	"github.com/composable-auto-assessment/generator/storage/casregistry"
)

const (
	targetKey      = "grpc-target"
	dialTimeoutKey = "grpc-dial-timeout"
	timeoutKey     = "grpc-timeout"
	maxMsgBytesKey = "grpc-max-msg-bytes"

	defaultDialTimeout = 5 * time.Second
)

var (
	flagTarget      string
	flagDialTimeout time.Duration
	flagTimeout     time.Duration
	flagMaxMsgBytes int
)

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:        "grpc",
		Description: "gRPC archive client (talks to qrgen-archived)",
		Usage:       casregistry.UsageCLI,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagTarget, targetKey, "", "gRPC target host:port (for --backend=grpc)")
			fs.DurationVar(&flagDialTimeout, dialTimeoutKey, defaultDialTimeout, "Dial timeout (for --backend=grpc)")
			fs.DurationVar(&flagTimeout, timeoutKey, 0, "Per-RPC timeout (for --backend=grpc)")
			fs.IntVar(&flagMaxMsgBytes, maxMsgBytesKey, 0, "Max gRPC message size in bytes (send+recv); 0 uses grpc defaults")
		},
		Open: func(opts casregistry.Options) (storage.CAS, func() error, error) {
			return open(flagTarget, DialOptions{Timeout: flagDialTimeout, MaxMsgBytes: flagMaxMsgBytes, Algorithm: opts.Algorithm}, flagTimeout)
		},
		OpenConfig: func(cfg map[string]string, opts casregistry.Options) (storage.CAS, func() error, error) {
			dial := DialOptions{Timeout: defaultDialTimeout, Algorithm: opts.Algorithm}
			var rpcTimeout time.Duration
			var err error
			if v := cfg[dialTimeoutKey]; v != "" {
				if dial.Timeout, err = time.ParseDuration(v); err != nil {
					return nil, nil, fmt.Errorf("grpccas: %s: %w", dialTimeoutKey, err)
				}
			}
			if v := cfg[timeoutKey]; v != "" {
				if rpcTimeout, err = time.ParseDuration(v); err != nil {
					return nil, nil, fmt.Errorf("grpccas: %s: %w", timeoutKey, err)
				}
			}
			if v := cfg[maxMsgBytesKey]; v != "" {
				if dial.MaxMsgBytes, err = strconv.Atoi(v); err != nil {
					return nil, nil, fmt.Errorf("grpccas: %s: %w", maxMsgBytesKey, err)
				}
			}
			return open(cfg[targetKey], dial, rpcTimeout)
		},
	})
}

func open(target string, dial DialOptions, rpcTimeout time.Duration) (storage.CAS, func() error, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, nil, fmt.Errorf("missing --%s", targetKey)
	}
	client, err := Dial(target, dial)
	if err != nil {
		return nil, nil, err
	}
	client.Timeout = rpcTimeout
	return client, client.Close, nil
}
