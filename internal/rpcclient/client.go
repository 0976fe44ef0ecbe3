// Package rpcclient is the dial-side counterpart of rpcserver: a thin
// net/rpc client over the same Unix domain socket, returning the
// RpcError taxonomy §6 names (Internal vs. Transport) instead of
// raw dial/encoding errors.
package rpcclient

import (
	"fmt"
	"net"
	"net/rpc"

	"github.com/diffsec/codesearchd/internal/rpcserver"
)

// Kind distinguishes the two RpcError variants §6 names.
type Kind string

const (
	// KindTransport covers dial failures, broken pipes, and anything
	// else that happened before or outside of a server-side response.
	KindTransport Kind = "transport"
	// KindInternal wraps an error the server itself returned.
	KindInternal Kind = "internal"
)

// Error is the client-visible counterpart of the reference
// implementation's `RpcError` enum.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Kind, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// ResponseChunk mirrors rpcserver.ResponseChunk on the wire.
type ResponseChunk = rpcserver.ResponseChunk

// Client dials a single Unix socket connection and issues requests
// over it. Like the net/rpc client it wraps, it may be used by
// multiple goroutines at once; their calls share the one connection.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to socketPath.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	return &Client{rpc: rpc.NewClient(conn)}, nil
}

// SearchCode calls the server's Service.SearchCode method (§6 "search_code(project_path, query) -> Vec<ResponseChunk> |
// RpcError").
func (c *Client) SearchCode(projectPath, query string) ([]ResponseChunk, error) {
	args := &rpcserver.SearchCodeArgs{ProjectPath: projectPath, Query: query}
	var reply rpcserver.SearchCodeReply
	if err := c.rpc.Call("Service.SearchCode", args, &reply); err != nil {
		if _, ok := err.(rpc.ServerError); ok {
			return nil, &Error{Kind: KindInternal, Err: err}
		}
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	return reply.Chunks, nil
}

// Close terminates the underlying connection.
func (c *Client) Close() error {
	return c.rpc.Close()
}
