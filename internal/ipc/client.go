package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the host.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// BackendStart asks the host to start the backend.
func (c *Client) BackendStart() (*CommandResponse, error) {
	var resp CommandResponse
	if err := c.client.Call(ServiceName+".BackendStart", BackendStartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BackendStop asks the host to stop the backend.
func (c *Client) BackendStop() (*CommandResponse, error) {
	var resp CommandResponse
	if err := c.client.Call(ServiceName+".BackendStop", BackendStopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the host status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call(ServiceName+".Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WaitReady blocks until the ready event fires or timeout elapses. A zero
// timeout waits indefinitely.
func (c *Client) WaitReady(timeout time.Duration) (*WaitReadyResponse, error) {
	var resp WaitReadyResponse
	req := WaitReadyRequest{TimeoutMillis: timeout.Milliseconds()}
	if err := c.client.Call(ServiceName+".WaitReady", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
