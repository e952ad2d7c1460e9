package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gitlab.com/codearena.net/internal/realtime/defs"
)

var ErrMalformedPacket = errors.New("malformed packet")

// Packet is one decoded text frame.
type Packet struct {
	Engine byte
	// Socket is zero unless Engine is EngineMessage.
	Socket    byte
	Namespace string
	AckID     *int64
	Data      []byte
}

// Decode parses an Engine.IO frame and, for messages, the Socket.IO packet inside it.
func Decode(frame []byte) (Packet, error) {
	if len(frame) == 0 {
		return Packet{}, fmt.Errorf("%w: empty frame", ErrMalformedPacket)
	}
	p := Packet{Engine: frame[0]}
	rest := frame[1:]
	if p.Engine < defs.EngineOpen || p.Engine > defs.EngineNoop {
		return Packet{}, fmt.Errorf("%w: unknown engine type %q", ErrMalformedPacket, p.Engine)
	}
	if p.Engine != defs.EngineMessage {
		p.Data = rest
		return p, nil
	}

	if len(rest) == 0 {
		return Packet{}, fmt.Errorf("%w: empty message", ErrMalformedPacket)
	}
	p.Socket = rest[0]
	if p.Socket < defs.SocketConnect || p.Socket > defs.SocketBinaryAck {
		return Packet{}, fmt.Errorf("%w: unknown socket type %q", ErrMalformedPacket, p.Socket)
	}
	rest = rest[1:]

	if p.Socket == defs.SocketBinaryEvent || p.Socket == defs.SocketBinaryAck {
		// attachment count prefix, e.g. "1-"
		i := bytes.IndexByte(rest, '-')
		if i < 0 {
			return Packet{}, fmt.Errorf("%w: missing attachment count", ErrMalformedPacket)
		}
		rest = rest[i+1:]
	}

	if len(rest) > 0 && rest[0] == '/' {
		end := bytes.IndexByte(rest, ',')
		if end < 0 {
			p.Namespace = string(rest)
			rest = nil
		} else {
			p.Namespace = string(rest[:end])
			rest = rest[end+1:]
		}
	}

	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		id, err := strconv.ParseInt(string(rest[:digits]), 10, 64)
		if err != nil {
			return Packet{}, fmt.Errorf("%w: ack id: %v", ErrMalformedPacket, err)
		}
		p.AckID = &id
		rest = rest[digits:]
	}

	p.Data = rest
	return p, nil
}

// DecodeOpen reads the handshake data of an open packet.
func DecodeOpen(p Packet) (defs.OpenData, error) {
	var open defs.OpenData
	if p.Engine != defs.EngineOpen {
		return open, fmt.Errorf("%w: expected open packet, got %q", ErrMalformedPacket, p.Engine)
	}
	if err := json.Unmarshal(p.Data, &open); err != nil {
		return open, fmt.Errorf("%w: open data: %v", ErrMalformedPacket, err)
	}
	return open, nil
}

// DecodeEvent splits an event packet into its name and first argument.
func DecodeEvent(p Packet) (string, json.RawMessage, error) {
	var args []json.RawMessage
	if err := json.Unmarshal(p.Data, &args); err != nil {
		return "", nil, fmt.Errorf("%w: event args: %v", ErrMalformedPacket, err)
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: event without name", ErrMalformedPacket)
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil {
		return "", nil, fmt.Errorf("%w: event name: %v", ErrMalformedPacket, err)
	}
	if len(args) < 2 {
		return name, nil, nil
	}
	return name, args[1], nil
}

// EncodeConnect builds the namespace connect packet, optionally carrying auth data.
func EncodeConnect(namespace string, auth interface{}) ([]byte, error) {
	buf := []byte{defs.EngineMessage, defs.SocketConnect}
	buf = appendNamespace(buf, namespace, auth != nil)
	if auth != nil {
		data, err := json.Marshal(auth)
		if err != nil {
			return nil, err
		}
		buf = append(buf, data...)
	}
	return buf, nil
}

// EncodeEvent builds an event packet: 42["name",data].
func EncodeEvent(namespace, name string, data interface{}) ([]byte, error) {
	args := []interface{}{name}
	if data != nil {
		args = append(args, data)
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	buf := []byte{defs.EngineMessage, defs.SocketEvent}
	buf = appendNamespace(buf, namespace, true)
	return append(buf, payload...), nil
}

// Pong answers a server ping, echoing any probe data.
func Pong(ping Packet) []byte {
	return append([]byte{defs.EnginePong}, ping.Data...)
}

func appendNamespace(buf []byte, namespace string, more bool) []byte {
	if namespace == "" || namespace == "/" {
		return buf
	}
	buf = append(buf, namespace...)
	if more {
		buf = append(buf, ',')
	}
	return buf
}
