package mcp

import (
	"maps"
	"sync"
)

// ClientInfo identifies the connected client as reported in initialize.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// SessionState captures negotiated protocol details and client preferences for
// the active MCP connection.
type SessionState struct {
	mu                 sync.RWMutex
	initialized        bool
	protocolVersion    string
	clientInfo         ClientInfo
	clientCapabilities map[string]any
	loggingLevel       LogLevel
}

// NewSessionState returns a session state with sensible defaults.
func NewSessionState() *SessionState {
	return &SessionState{
		clientCapabilities: make(map[string]any),
		loggingLevel:       LogLevelInfo,
	}
}

// MarkInitialized records the negotiated protocol version and client details.
func (s *SessionState) MarkInitialized(protocolVersion string, info ClientInfo, capabilities map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.protocolVersion = protocolVersion
	s.clientInfo = info
	if capabilities == nil {
		s.clientCapabilities = make(map[string]any)
	} else {
		s.clientCapabilities = maps.Clone(capabilities)
	}
}

// Initialized reports whether the handshake has completed.
func (s *SessionState) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// ProtocolVersion returns the negotiated protocol version.
func (s *SessionState) ProtocolVersion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.protocolVersion
}

// Client returns the client's self-reported name and version.
func (s *SessionState) Client() ClientInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientInfo
}

// ClientCapabilities returns a shallow copy of the negotiated capabilities.
func (s *SessionState) ClientCapabilities() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.clientCapabilities)
}

// SetLoggingLevel stores the requested minimum logging level.
func (s *SessionState) SetLoggingLevel(level LogLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggingLevel = level
}

// LoggingLevel returns the currently configured minimum logging level.
func (s *SessionState) LoggingLevel() LogLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggingLevel
}
