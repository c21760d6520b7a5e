package grpccas

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/composable-auto-assessment/generator/cidutil"
	"github.com/composable-auto-assessment/generator/fingerprint"
	"github.com/composable-auto-assessment/generator/storage"
	"github.com/composable-auto-assessment/generator/storage/localfs"
	"github.com/composable-auto-assessment/generator/storage/testkit"
)

func startServer(t *testing.T, alg fingerprint.Algorithm) *Client {
	t.Helper()
	cas, err := localfs.New(t.TempDir(), alg)
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterArchiveServer(srv, &Server{CAS: cas})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })

	client := newClient(cc, alg)
	client.Timeout = 2 * time.Second
	return client
}

func TestGRPC_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, fingerprint.SHAKE128, func(t *testing.T) storage.CAS {
		return startServer(t, fingerprint.SHAKE128)
	})
}

func TestGRPC_AlgorithmDisagreement(t *testing.T) {
	// Server writes BLAKE3 CIDs; a SHAKE128 client must refuse the reply.
	client := startServer(t, fingerprint.BLAKE3)
	client.alg = fingerprint.SHAKE128
	if _, err := client.Put([]byte("payload")); err != storage.ErrCIDMismatch {
		t.Fatalf("expected ErrCIDMismatch, got %v", err)
	}
}

func TestGRPC_NotFoundMapsToSentinel(t *testing.T) {
	client := startServer(t, fingerprint.SHAKE128)
	id, err := cidutil.ContentCID(fingerprint.SHAKE128, []byte("absent"))
	if err != nil {
		t.Fatalf("ContentCID: %v", err)
	}
	if _, err := client.Get(id); !storage.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
