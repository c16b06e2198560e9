package ipc

import (
	"context"
	"fmt"
	"time"

	"expandd/internal/diag"
	"expandd/internal/engine"
	"expandd/internal/notify"
	"expandd/internal/rules"
)

// Archive persists the rule set after control-surface changes. A nil
// Archive skips persistence.
type Archive interface {
	Save([]rules.Rule) error
}

// DaemonHandler maps control messages onto the engine.
type DaemonHandler struct {
	engine    *engine.Engine
	archive   Archive
	ring      *diag.Ring
	version   string
	startedAt time.Time
}

// NewDaemonHandler creates the daemon-side message handler.
func NewDaemonHandler(eng *engine.Engine, archive Archive, ring *diag.Ring, version string) *DaemonHandler {
	return &DaemonHandler{
		engine:    eng,
		archive:   archive,
		ring:      ring,
		version:   version,
		startedAt: time.Now(),
	}
}

// HandleMessage dispatches one request to its operation.
func (h *DaemonHandler) HandleMessage(ctx context.Context, client *ClientConn, msg *Message) (*Message, error) {
	reqID := msg.Header.RequestID

	switch msg.Header.Type {
	case MsgStatusRequest:
		return h.handleStatus(reqID)
	case MsgSetRules:
		return h.handleSetRules(reqID, msg.Payload)
	case MsgGetRules:
		return h.handleGetRules(reqID)
	case MsgStartEngine:
		return h.handleStartEngine(ctx, reqID, msg.Payload)
	case MsgStopEngine:
		return h.handleStopEngine(reqID)
	case MsgSetOptions:
		return h.handleSetOptions(reqID, msg.Payload)
	case MsgInjectText:
		return h.handleInjectText(reqID, msg.Payload)
	case MsgTogglePause:
		return h.handleTogglePause(reqID)
	case MsgSetPauseState:
		return h.handleSetPauseState(reqID, msg.Payload)
	case MsgGetPauseState:
		return h.handleGetPauseState(reqID)
	case MsgGetLogs:
		return h.handleGetLogs(reqID, msg.Payload)
	case MsgSetIconState:
		return h.handleSetIconState(reqID, msg.Payload)
	default:
		return NewErrorMessage(reqID, ErrInvalidRequest,
			fmt.Sprintf("unknown message type 0x%04x", uint16(msg.Header.Type))), nil
	}
}

func (h *DaemonHandler) handleStatus(reqID uint32) (*Message, error) {
	state := h.engine.State()
	resp := &StatusResponse{
		Version:    h.version,
		UptimeSec:  int64(time.Since(h.startedAt).Seconds()),
		Running:    state.Running(),
		Paused:     state.IsPaused(),
		DryRun:     state.DryRun(),
		Verbose:    state.Verbose(),
		EventCount: state.EventCount(),
		RuleCount:  h.engine.Rules().Len(),
		Scope:      h.engine.ActiveScope(),
	}
	return NewResponse(MsgStatusResponse, reqID, resp)
}

func (h *DaemonHandler) handleSetRules(reqID uint32, payload []byte) (*Message, error) {
	var req SetRulesRequest
	if err := Decode(payload, &req); err != nil {
		return NewErrorMessage(reqID, ErrInvalidRequest, "invalid set-rules request"), nil
	}

	rs := RulesFromDTO(req.Rules)
	h.engine.Rules().ReplaceAll(rs)

	resp := &SetRulesResponse{Success: true, Count: len(rs)}
	if h.archive != nil {
		if err := h.archive.Save(rs); err != nil {
			// The in-memory set is already live; persistence failure is
			// reported but does not roll it back.
			resp.Error = fmt.Sprintf("rules active but not persisted: %v", err)
		}
	}
	return NewResponse(MsgSetRulesResp, reqID, resp)
}

func (h *DaemonHandler) handleGetRules(reqID uint32) (*Message, error) {
	resp := &GetRulesResponse{Rules: RulesToDTO(h.engine.Rules().Snapshot())}
	return NewResponse(MsgGetRulesResp, reqID, resp)
}

func (h *DaemonHandler) handleStartEngine(ctx context.Context, reqID uint32, payload []byte) (*Message, error) {
	var req StartEngineRequest
	if len(payload) > 0 {
		if err := Decode(payload, &req); err != nil {
			return NewErrorMessage(reqID, ErrInvalidRequest, "invalid start request"), nil
		}
	}
	if req.Verbose != nil {
		h.engine.State().SetVerbose(*req.Verbose)
	}

	resp := &StartEngineResponse{Success: true}
	if err := h.engine.Start(ctx); err != nil {
		resp.Success = false
		resp.Error = err.Error()
	}
	resp.Scope = h.engine.ActiveScope()
	return NewResponse(MsgStartEngineResp, reqID, resp)
}

func (h *DaemonHandler) handleStopEngine(reqID uint32) (*Message, error) {
	resp := &StopEngineResponse{Success: true}
	if err := h.engine.Stop(); err != nil {
		resp.Error = err.Error()
	}
	return NewResponse(MsgStopEngineResp, reqID, resp)
}

func (h *DaemonHandler) handleSetOptions(reqID uint32, payload []byte) (*Message, error) {
	var req SetOptionsRequest
	if err := Decode(payload, &req); err != nil {
		return NewErrorMessage(reqID, ErrInvalidRequest, "invalid options request"), nil
	}

	h.engine.SetOptions(req.Verbose, req.DryRun)
	state := h.engine.State()
	resp := &SetOptionsResponse{Verbose: state.Verbose(), DryRun: state.DryRun()}
	return NewResponse(MsgSetOptionsResp, reqID, resp)
}

func (h *DaemonHandler) handleInjectText(reqID uint32, payload []byte) (*Message, error) {
	var req InjectTextRequest
	if err := Decode(payload, &req); err != nil {
		return NewErrorMessage(reqID, ErrInvalidRequest, "invalid inject request"), nil
	}

	h.engine.InjectText(req.Text)
	return NewResponse(MsgInjectTextResp, reqID, &InjectTextResponse{Success: true})
}

func (h *DaemonHandler) handleTogglePause(reqID uint32) (*Message, error) {
	paused := h.engine.TogglePause()
	return NewResponse(MsgTogglePauseResp, reqID, &TogglePauseResponse{Paused: paused})
}

func (h *DaemonHandler) handleSetPauseState(reqID uint32, payload []byte) (*Message, error) {
	var req SetPauseStateRequest
	if err := Decode(payload, &req); err != nil {
		return NewErrorMessage(reqID, ErrInvalidRequest, "invalid pause request"), nil
	}

	if req.Paused {
		h.engine.Pause(req.ByUser)
	} else {
		h.engine.Resume(req.ByUser)
	}
	resp := &PauseStateResponse{PauseStateInfo: h.engine.State().PauseInfo()}
	return NewResponse(MsgSetPauseStateResp, reqID, resp)
}

func (h *DaemonHandler) handleGetPauseState(reqID uint32) (*Message, error) {
	resp := &PauseStateResponse{PauseStateInfo: h.engine.State().PauseInfo()}
	return NewResponse(MsgGetPauseStateResp, reqID, resp)
}

func (h *DaemonHandler) handleSetIconState(reqID uint32, payload []byte) (*Message, error) {
	var req SetIconStateRequest
	if err := Decode(payload, &req); err != nil {
		return NewErrorMessage(reqID, ErrInvalidRequest, "invalid icon state request"), nil
	}

	st, err := notify.ParseIconState(req.State)
	if err != nil {
		return NewErrorMessage(reqID, ErrInvalidRequest, err.Error()), nil
	}
	h.engine.Notifier().IconStateChanged(st)
	return NewResponse(MsgSetIconStateResp, reqID, &SetIconStateResponse{Success: true, State: string(st)})
}

func (h *DaemonHandler) handleGetLogs(reqID uint32, payload []byte) (*Message, error) {
	var req GetLogsRequest
	if len(payload) > 0 {
		if err := Decode(payload, &req); err != nil {
			return NewErrorMessage(reqID, ErrInvalidRequest, "invalid logs request"), nil
		}
	}

	var lines []string
	if h.ring != nil {
		lines = h.ring.Lines()
	}
	if req.Limit > 0 && len(lines) > req.Limit {
		lines = lines[len(lines)-req.Limit:]
	}
	return NewResponse(MsgGetLogsResp, reqID, &GetLogsResponse{Lines: lines})
}

var _ Handler = (*DaemonHandler)(nil)
