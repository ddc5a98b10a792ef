package model

// Type names a transport to the agent host.
type Type string

func (t Type) String() string { return string(t) }

const (
	WS     Type = "ws"
	Exec   Type = "exec"
	Replay Type = "replay"
)

func (t Type) Valid() bool {
	switch t {
	case WS, Exec, Replay:
		return true
	}
	return false
}
