package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Common client errors.
var (
	ErrNotConnected     = errors.New("not connected to daemon")
	ErrDaemonNotRunning = errors.New("daemon is not running")
)

// ClientConfig configures the IPC client.
type ClientConfig struct {
	SocketPath     string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(socketPath string) ClientConfig {
	return ClientConfig{
		SocketPath:     socketPath,
		ConnectTimeout: 5 * time.Second,
		RequestTimeout: 30 * time.Second,
	}
}

// Client is a synchronous control client: one request, one response,
// serialized over a single connection.
type Client struct {
	cfg ClientConfig

	mu        sync.Mutex
	conn      net.Conn
	nextReqID atomic.Uint32
}

// Dial connects to the daemon socket.
func Dial(cfg ClientConfig) (*Client, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	conn, err := dialer.Dial("unix", cfg.SocketPath)
	if err != nil {
		if os.IsNotExist(errors.Unwrap(err)) || os.IsNotExist(err) {
			return nil, ErrDaemonNotRunning
		}
		return nil, fmt.Errorf("connect: %w", err)
	}

	return &Client{cfg: cfg, conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// roundTrip sends one request and reads its response.
func (c *Client) roundTrip(msgType MessageType, req any) (*Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}

	var payload []byte
	if req != nil {
		var err error
		payload, err = Encode(req)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	reqID := c.nextReqID.Add(1)
	msg := NewMessage(msgType, reqID, payload)

	deadline := time.Now().Add(c.cfg.RequestTimeout)
	c.conn.SetWriteDeadline(deadline)
	if err := msg.Write(c.conn); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	c.conn.SetReadDeadline(deadline)
	resp, err := ReadMessage(c.conn)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.Header.RequestID != reqID {
		return nil, fmt.Errorf("response for request %d, want %d", resp.Header.RequestID, reqID)
	}
	if resp.Header.Type == MsgError {
		var errResp ErrorResponse
		if err := Decode(resp.Payload, &errResp); err != nil {
			return nil, errors.New("daemon reported an unreadable error")
		}
		return nil, fmt.Errorf("daemon error %d: %s", errResp.Code, errResp.Message)
	}
	return resp, nil
}

// call round-trips a request and decodes the expected response type.
func (c *Client) call(msgType, wantType MessageType, req, out any) error {
	resp, err := c.roundTrip(msgType, req)
	if err != nil {
		return err
	}
	if resp.Header.Type != wantType {
		return fmt.Errorf("unexpected response type 0x%04x", uint16(resp.Header.Type))
	}
	if out != nil {
		if err := Decode(resp.Payload, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Ping checks daemon liveness.
func (c *Client) Ping() error {
	resp, err := c.roundTrip(MsgPing, nil)
	if err != nil {
		return err
	}
	if resp.Header.Type != MsgPong {
		return fmt.Errorf("unexpected response type 0x%04x", uint16(resp.Header.Type))
	}
	return nil
}

// Status fetches daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.call(MsgStatusRequest, MsgStatusResponse, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetRules replaces the active rule set.
func (c *Client) SetRules(rules []RuleDTO) (*SetRulesResponse, error) {
	var resp SetRulesResponse
	if err := c.call(MsgSetRules, MsgSetRulesResp, &SetRulesRequest{Rules: rules}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRules fetches the active rule set.
func (c *Client) GetRules() ([]RuleDTO, error) {
	var resp GetRulesResponse
	if err := c.call(MsgGetRules, MsgGetRulesResp, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rules, nil
}

// StartEngine starts the expansion engine.
func (c *Client) StartEngine(verbose *bool) (*StartEngineResponse, error) {
	var resp StartEngineResponse
	if err := c.call(MsgStartEngine, MsgStartEngineResp, &StartEngineRequest{Verbose: verbose}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StopEngine stops the expansion engine.
func (c *Client) StopEngine() (*StopEngineResponse, error) {
	var resp StopEngineResponse
	if err := c.call(MsgStopEngine, MsgStopEngineResp, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetOptions updates runtime flags; nil fields are left unchanged.
func (c *Client) SetOptions(verbose, dryRun *bool) (*SetOptionsResponse, error) {
	var resp SetOptionsResponse
	req := &SetOptionsRequest{Verbose: verbose, DryRun: dryRun}
	if err := c.call(MsgSetOptions, MsgSetOptionsResp, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InjectText types text on the daemon's keyboard, bypassing matching.
func (c *Client) InjectText(text string) error {
	var resp InjectTextResponse
	return c.call(MsgInjectText, MsgInjectTextResp, &InjectTextRequest{Text: text}, &resp)
}

// TogglePause flips the user pause flag.
func (c *Client) TogglePause() (bool, error) {
	var resp TogglePauseResponse
	if err := c.call(MsgTogglePause, MsgTogglePauseResp, nil, &resp); err != nil {
		return false, err
	}
	return resp.Paused, nil
}

// SetPauseState sets or clears one pause flag.
func (c *Client) SetPauseState(paused, byUser bool) (*PauseStateResponse, error) {
	var resp PauseStateResponse
	req := &SetPauseStateRequest{Paused: paused, ByUser: byUser}
	if err := c.call(MsgSetPauseState, MsgSetPauseStateResp, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPauseState fetches the pause state.
func (c *Client) GetPauseState() (*PauseStateResponse, error) {
	var resp PauseStateResponse
	if err := c.call(MsgGetPauseState, MsgGetPauseStateResp, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetIconState drives the status indicator to a named state. Unknown names
// are rejected by the daemon.
func (c *Client) SetIconState(state string) error {
	var resp SetIconStateResponse
	return c.call(MsgSetIconState, MsgSetIconStateResp, &SetIconStateRequest{State: state}, &resp)
}

// GetLogs fetches recent diagnostics lines, oldest first. Limit 0 means
// all retained lines.
func (c *Client) GetLogs(limit int) ([]string, error) {
	var resp GetLogsResponse
	if err := c.call(MsgGetLogs, MsgGetLogsResp, &GetLogsRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return resp.Lines, nil
}
