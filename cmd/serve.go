package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diffsec/codesearchd/internal/config"
	"github.com/diffsec/codesearchd/internal/dispatcher"
	"github.com/diffsec/codesearchd/internal/embedding"
	"github.com/diffsec/codesearchd/internal/logx"
	"github.com/diffsec/codesearchd/internal/projectindexer"
	"github.com/diffsec/codesearchd/internal/rpcserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the code search daemon",
	Long: `serve starts the RPC server over its hardcoded Unix domain
socket and dispatches indexing requests to one Project Indexer actor
per project root, created lazily on first request. Parameter-free, per
the local-socket RPC transport's contract (§6): the socket path never
varies, and the embedding oracle is configured by
.codesearchd/config.yaml in the directory serve is started from
rather than by a flag; that one oracle serves every project.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, err := config.Load(wd)
	if err != nil {
		return fmt.Errorf("load embedding config: %w", err)
	}

	oracle, err := embedding.NewProvider(cfg.ToProviderConfig())
	if err != nil {
		return fmt.Errorf("construct embedding oracle: %w", err)
	}
	defer oracle.Close()

	d := dispatcher.NewDefault(oracle, projectindexer.DefaultMaxChunkSize)
	svc := rpcserver.NewService(d)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logx.Info("listening on %s", rpcserver.DefaultSocketPath)
	return rpcserver.Serve(ctx, rpcserver.DefaultSocketPath, svc)
}
