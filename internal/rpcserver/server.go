// Package rpcserver gives §6's "local-socket RPC transport and
// its serialization" — explicitly out of scope for the core engine —
// one concrete, minimal implementation, so the module yields a
// runnable binary: stdlib net/rpc framed over a Unix domain socket.
// Grounded in original_source/src/bin/code_search_server.rs for two
// behaviors §6 already names without spelling out completely: stale-socket
// cleanup on startup, and bounding
// concurrently served channels to a reference value of 10
// (`buffer_unordered(10)`).
package rpcserver

import (
	"context"
	"net"
	"net/rpc"
	"os"

	"github.com/diffsec/codesearchd/internal/codesearch"
	"github.com/diffsec/codesearchd/internal/dispatcher"
	"github.com/diffsec/codesearchd/internal/logx"
)

// DefaultSocketPath is the reference deployment's hardcoded Unix
// socket path (§6).
const DefaultSocketPath = "/tmp/code_search.sock"

// MaxConcurrentChannels bounds how many connections are served at
// once (§6 "accepts up to N (reference: 10) concurrent
// channels").
const MaxConcurrentChannels = 10

// ResponseChunk is the wire shape of §6's `ResponseChunk`.
type ResponseChunk struct {
	Path        string
	RowStart    uint32
	RowEnd      uint32
	ColumnStart uint32
	ColumnEnd   uint32
	Content     string
}

// SearchCodeArgs is the request payload for the sole RPC method (§6 "search_code(project_path, query)").
type SearchCodeArgs struct {
	ProjectPath string
	Query       string
}

// SearchCodeReply carries the result chunks.
type SearchCodeReply struct {
	Chunks []ResponseChunk
}

// Service exposes Service.SearchCode over net/rpc. Its only
// method is registered against Go's stdlib RPC codec; a net/rpc error
// return is always an Internal-kind failure, matching §6's
// `RpcError::Internal(string)` — transport-level failures
// (`RpcError::Transport`) are the client's concern (dial/read errors),
// since the server never observes them.
type Service struct {
	dispatcher *dispatcher.Dispatcher
}

// NewService wraps a Dispatcher for RPC exposure.
func NewService(d *dispatcher.Dispatcher) *Service {
	return &Service{dispatcher: d}
}

// SearchCode implements the RPC method. net/rpc requires this exact
// shape: one pointer-to-struct argument, one pointer-to-struct reply,
// an error return.
func (s *Service) SearchCode(args *SearchCodeArgs, reply *SearchCodeReply) error {
	idx, err := s.dispatcher.GetOrCreate(args.ProjectPath)
	if err != nil {
		return codesearch.AsInternal("rpcserver.SearchCode", err)
	}

	chunks, err := idx.SearchCode(context.Background(), args.Query)
	if err != nil {
		return codesearch.AsInternal("rpcserver.SearchCode", err)
	}

	reply.Chunks = make([]ResponseChunk, len(chunks))
	for i, c := range chunks {
		reply.Chunks[i] = ResponseChunk(c)
	}
	return nil
}

// Serve binds socketPath (removing any stale socket left by a prior
// run) and serves incoming connections, never admitting more than
// MaxConcurrentChannels at once. Serve blocks until the listener is
// closed or ctx is cancelled.
func Serve(ctx context.Context, socketPath string, svc *Service) error {
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return err
		}
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return err
	}
	defer listener.Close()

	server := rpc.NewServer()
	if err := server.Register(svc); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	sem := make(chan struct{}, MaxConcurrentChannels)
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				logx.Warn("accept: %v", err)
				return err
			}
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			conn.Close()
			return nil
		}

		go func() {
			defer func() { <-sem }()
			server.ServeConn(conn)
		}()
	}
}
