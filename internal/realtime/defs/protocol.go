package defs

import "time"

// Engine.IO v4 packet types, sent as the first character of every frame.
const (
	EngineOpen    byte = '0'
	EngineClose   byte = '1'
	EnginePing    byte = '2'
	EnginePong    byte = '3'
	EngineMessage byte = '4'
	EngineUpgrade byte = '5'
	EngineNoop    byte = '6'
)

// Socket.IO v5 packet types, carried inside an Engine.IO message.
const (
	SocketConnect      byte = '0'
	SocketDisconnect   byte = '1'
	SocketEvent        byte = '2'
	SocketAck          byte = '3'
	SocketConnectError byte = '4'
	SocketBinaryEvent  byte = '5'
	SocketBinaryAck    byte = '6'
)

// Event names used by the submission service.
const (
	EventAuth             = "auth"
	EventSubmissionUpdate = "submission_update"
	EventConnection       = "connection"
	EventMessage          = "message"
)

const (
	EngineVersion = "4"
	DefaultPath   = "/socket.io/"

	// Used until the server's open packet says otherwise.
	DefaultPingInterval = 25 * time.Second
	DefaultPingTimeout  = 20 * time.Second

	WriteTimeout = 10 * time.Second
)
