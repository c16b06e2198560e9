// Package ipc provides the control surface between the expandd daemon and
// client tools over a Unix socket.
//
// The protocol is a simple request/response frame: a fixed 16-byte header
// followed by a JSON payload. Local socket permissions are the access
// control; the daemon only listens on an owner-only socket.
package ipc

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"expandd/internal/engine"
	"expandd/internal/rules"
)

// Protocol constants.
const (
	ProtocolVersion = 1
	ProtocolMagic   = 0x45585043 // "EXPC"
)

// MessageType identifies the type of IPC message.
type MessageType uint16

const (
	// Control messages (0x00xx)
	MsgPing  MessageType = 0x0001
	MsgPong  MessageType = 0x0002
	MsgError MessageType = 0x0005

	// Status (0x01xx)
	MsgStatusRequest  MessageType = 0x0100
	MsgStatusResponse MessageType = 0x0101

	// Rules (0x02xx)
	MsgSetRules     MessageType = 0x0200
	MsgSetRulesResp MessageType = 0x0201
	MsgGetRules     MessageType = 0x0202
	MsgGetRulesResp MessageType = 0x0203

	// Engine lifecycle and options (0x03xx)
	MsgStartEngine     MessageType = 0x0300
	MsgStartEngineResp MessageType = 0x0301
	MsgStopEngine      MessageType = 0x0302
	MsgStopEngineResp  MessageType = 0x0303
	MsgSetOptions      MessageType = 0x0304
	MsgSetOptionsResp  MessageType = 0x0305

	// Direct injection (0x04xx)
	MsgInjectText     MessageType = 0x0400
	MsgInjectTextResp MessageType = 0x0401

	// Pause control (0x05xx)
	MsgTogglePause       MessageType = 0x0500
	MsgTogglePauseResp   MessageType = 0x0501
	MsgSetPauseState     MessageType = 0x0502
	MsgSetPauseStateResp MessageType = 0x0503
	MsgGetPauseState     MessageType = 0x0504
	MsgGetPauseStateResp MessageType = 0x0505

	// Diagnostics (0x06xx)
	MsgGetLogs     MessageType = 0x0600
	MsgGetLogsResp MessageType = 0x0601

	// Status indicator (0x07xx)
	MsgSetIconState     MessageType = 0x0700
	MsgSetIconStateResp MessageType = 0x0701
)

// Header is the fixed-size message header (16 bytes).
type Header struct {
	Magic     uint32
	Version   uint8
	Flags     uint8
	Type      MessageType
	RequestID uint32
	Length    uint32 // payload length, not including the header
}

// HeaderSize is the size of the header in bytes.
const HeaderSize = 16

// MaxPayloadSize bounds a single frame's payload.
const MaxPayloadSize = 16 * 1024 * 1024

// Message wraps a header and payload.
type Message struct {
	Header  Header
	Payload []byte
}

// NewMessage creates a message with the given type and payload.
func NewMessage(msgType MessageType, requestID uint32, payload []byte) *Message {
	return &Message{
		Header: Header{
			Magic:     ProtocolMagic,
			Version:   ProtocolVersion,
			Type:      msgType,
			RequestID: requestID,
			Length:    uint32(len(payload)),
		},
		Payload: payload,
	}
}

// Write writes the header to a writer.
func (h *Header) Write(w io.Writer) error {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(buf[0:4], h.Magic)
	buf[4] = h.Version
	buf[5] = h.Flags
	binary.BigEndian.PutUint16(buf[6:8], uint16(h.Type))
	binary.BigEndian.PutUint32(buf[8:12], h.RequestID)
	binary.BigEndian.PutUint32(buf[12:16], h.Length)
	_, err := w.Write(buf)
	return err
}

// ReadHeader reads and validates a header from a reader.
func ReadHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	h := &Header{
		Magic:     binary.BigEndian.Uint32(buf[0:4]),
		Version:   buf[4],
		Flags:     buf[5],
		Type:      MessageType(binary.BigEndian.Uint16(buf[6:8])),
		RequestID: binary.BigEndian.Uint32(buf[8:12]),
		Length:    binary.BigEndian.Uint32(buf[12:16]),
	}

	if h.Magic != ProtocolMagic {
		return nil, fmt.Errorf("invalid magic number: %x", h.Magic)
	}
	if h.Version > ProtocolVersion {
		return nil, fmt.Errorf("unsupported protocol version: %d", h.Version)
	}
	return h, nil
}

// Write writes the message to a writer.
func (m *Message) Write(w io.Writer) error {
	if err := m.Header.Write(w); err != nil {
		return err
	}
	if len(m.Payload) > 0 {
		_, err := w.Write(m.Payload)
		return err
	}
	return nil
}

// ReadMessage reads a complete message from a reader.
func ReadMessage(r io.Reader) (*Message, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	m := &Message{Header: *h}
	if h.Length > 0 {
		if h.Length > MaxPayloadSize {
			return nil, fmt.Errorf("payload too large: %d bytes", h.Length)
		}
		m.Payload = make([]byte, h.Length)
		if _, err := io.ReadFull(r, m.Payload); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Request/response payloads

// ErrorResponse is sent when an operation fails.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	ErrUnknown        = 1
	ErrInvalidRequest = 2
	ErrInternalError  = 5
)

// StatusResponse contains daemon status.
type StatusResponse struct {
	Version    string `json:"version"`
	UptimeSec  int64  `json:"uptime_sec"`
	Running    bool   `json:"running"`
	Paused     bool   `json:"paused"`
	DryRun     bool   `json:"dry_run"`
	Verbose    bool   `json:"verbose"`
	EventCount uint64 `json:"event_count"`
	RuleCount  int    `json:"rule_count"`
	Scope      string `json:"scope"`
}

// RuleDTO is one expansion rule on the wire.
type RuleDTO struct {
	Trigger     string `json:"trigger"`
	Replacement string `json:"replacement"`
}

// RulesToDTO converts rules to their wire form.
func RulesToDTO(rs []rules.Rule) []RuleDTO {
	out := make([]RuleDTO, len(rs))
	for i, r := range rs {
		out[i] = RuleDTO{Trigger: r.Trigger, Replacement: r.Replacement}
	}
	return out
}

// RulesFromDTO converts wire rules to the engine's form.
func RulesFromDTO(dtos []RuleDTO) []rules.Rule {
	out := make([]rules.Rule, len(dtos))
	for i, d := range dtos {
		out[i] = rules.Rule{Trigger: d.Trigger, Replacement: d.Replacement}
	}
	return out
}

// SetRulesRequest replaces the active rule set.
type SetRulesRequest struct {
	Rules []RuleDTO `json:"rules"`
}

// SetRulesResponse acknowledges a rule replacement.
type SetRulesResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

// GetRulesResponse contains the active rule set.
type GetRulesResponse struct {
	Rules []RuleDTO `json:"rules"`
}

// StartEngineRequest starts the engine. Verbose, when set, applies before
// the listener installs.
type StartEngineRequest struct {
	Verbose *bool `json:"verbose,omitempty"`
}

// StartEngineResponse acknowledges an engine start.
type StartEngineResponse struct {
	Success bool   `json:"success"`
	Scope   string `json:"scope"`
	Error   string `json:"error,omitempty"`
}

// StopEngineResponse acknowledges an engine stop.
type StopEngineResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SetOptionsRequest updates runtime flags; nil fields are left unchanged.
type SetOptionsRequest struct {
	Verbose *bool `json:"verbose,omitempty"`
	DryRun  *bool `json:"dry_run,omitempty"`
}

// SetOptionsResponse reports the flags after the update.
type SetOptionsResponse struct {
	Verbose bool `json:"verbose"`
	DryRun  bool `json:"dry_run"`
}

// InjectTextRequest types text directly, bypassing match detection.
type InjectTextRequest struct {
	Text string `json:"text"`
}

// InjectTextResponse acknowledges an injection.
type InjectTextResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// TogglePauseResponse reports the pause state after the toggle.
type TogglePauseResponse struct {
	Paused bool `json:"paused"`
}

// SetPauseStateRequest sets or clears one pause flag.
type SetPauseStateRequest struct {
	Paused bool `json:"paused"`
	ByUser bool `json:"by_user"`
}

// PauseStateResponse reports the full pause state.
type PauseStateResponse struct {
	engine.PauseStateInfo
}

// SetIconStateRequest drives the status indicator to a named state.
type SetIconStateRequest struct {
	State string `json:"state"`
}

// SetIconStateResponse acknowledges an indicator update.
type SetIconStateResponse struct {
	Success bool   `json:"success"`
	State   string `json:"state"`
}

// GetLogsRequest fetches recent diagnostics lines. Limit 0 means all
// retained lines.
type GetLogsRequest struct {
	Limit int `json:"limit,omitempty"`
}

// GetLogsResponse contains recent diagnostics lines, oldest first.
type GetLogsResponse struct {
	Lines []string `json:"lines"`
}

// Encode encodes a payload to JSON bytes.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Decode decodes JSON bytes to a payload.
func Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// NewErrorMessage creates an error message.
func NewErrorMessage(requestID uint32, code int, message string) *Message {
	payload, _ := Encode(&ErrorResponse{Code: code, Message: message})
	return NewMessage(MsgError, requestID, payload)
}

// NewResponse creates a response message.
func NewResponse(msgType MessageType, requestID uint32, v any) (*Message, error) {
	payload, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return NewMessage(msgType, requestID, payload), nil
}
