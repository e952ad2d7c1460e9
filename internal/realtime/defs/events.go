package defs

// Protocol data structures
type (
	// OpenData is the payload of the Engine.IO open packet.
	OpenData struct {
		SID          string   `json:"sid"`
		Upgrades     []string `json:"upgrades"`
		PingInterval int64    `json:"pingInterval"`
		PingTimeout  int64    `json:"pingTimeout"`
		MaxPayload   int64    `json:"maxPayload"`
	}

	// ConnectData is the payload of the Socket.IO connect acknowledgement.
	ConnectData struct {
		SID string `json:"sid"`
	}

	// ConnectErrorData is sent when the server refuses the namespace connection.
	ConnectErrorData struct {
		Message string `json:"message"`
	}

	// AuthData associates the connection with a user.
	AuthData struct {
		UserID string `json:"userId"`
	}

	// ConnectionData is the greeting the server emits after connecting.
	ConnectionData struct {
		Message string `json:"message"`
	}
)
