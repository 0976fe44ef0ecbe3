package rpcserver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/diffsec/codesearchd/internal/dispatcher"
	"github.com/diffsec/codesearchd/internal/embedding"
	"github.com/diffsec/codesearchd/internal/rpcclient"
	"github.com/diffsec/codesearchd/internal/rpcserver"
)

type stubProvider struct{ dim int }

func (s stubProvider) Name() string { return "stub" }
func (s stubProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := s.EmbedBatch(ctx, []string{text})
	return v[0], err
}
func (s stubProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, s.dim)
		out[i][0] = 1
	}
	return out, nil
}
func (s stubProvider) Dimension() int { return s.dim }
func (s stubProvider) Close() error   { return nil }

func TestServeAndSearchCodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.go"), []byte("package lib\n\nfunc Add(a, b int) int { return a+b }\n"), 0o644))

	sockPath := filepath.Join(t.TempDir(), "test.sock")
	d := dispatcher.NewDefault(stubProvider{dim: 4}, 1000)
	svc := rpcserver.NewService(d)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() { serveErr <- rpcserver.Serve(ctx, sockPath, svc) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(sockPath)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	client, err := rpcclient.Dial(sockPath)
	require.NoError(t, err)
	defer client.Close()

	chunks, err := client.SearchCode(dir, "add")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	cancel()
	<-serveErr
}

func TestServeRemovesStaleSocket(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "stale.sock")
	require.NoError(t, os.WriteFile(sockPath, []byte("not a socket"), 0o644))

	d := dispatcher.NewDefault(stubProvider{dim: 4}, 1000)
	svc := rpcserver.NewService(d)

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- rpcserver.Serve(ctx, sockPath, svc) }()

	require.Eventually(t, func() bool {
		client, err := rpcclient.Dial(sockPath)
		if err != nil {
			return false
		}
		client.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-serveErr
}

var _ embedding.Provider = stubProvider{}
