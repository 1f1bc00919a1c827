package server

import (
	"encoding/json"

	"hideseek-arcade/internal/game"
)

// Client -> Server message types
const (
	MsgLogin       = "login"       // claim or resume a username
	MsgAuth        = "auth"        // resume with a token
	MsgStart       = "start"       // start or resume a run
	MsgPause       = "pause"       // stop ticking
	MsgMove        = "move"        // one direction on/off
	MsgIntent      = "intent"      // all four directions at once
	MsgShoot       = "shoot"       // fire toward a point
	MsgLeaderboard = "leaderboard" // request the score table
	MsgControl     = "control"     // phone controller attach
)

// Server -> Client message types
const (
	MsgAuthOK    = "auth_ok"
	MsgStarted   = "started"
	MsgPaused    = "paused"
	MsgState     = "state" // binary msgpack snapshot
	MsgOver      = "over"
	MsgScores    = "scores"
	MsgError     = "error"
	MsgControlOK = "control_ok" // controller attach confirmed
	MsgCtrlOn    = "ctrl_on"    // notify owner: controller attached
	MsgCtrlOff   = "ctrl_off"   // notify owner: controller detached
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// LoginMsg claims a username. A password is optional; the first one given locks the name.
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

// AuthMsg resumes an earlier login
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms a login
type AuthOKMsg struct {
	Token    string     `json:"token"`
	Username string     `json:"username"`
	Stats    game.Stats `json:"stats"`
}

// StartedMsg is sent when a run begins or resumes
type StartedMsg struct {
	SessionID string     `json:"sid"`
	Width     int        `json:"fw"`
	Height    int        `json:"fh"`
	Stats     game.Stats `json:"stats"`
}

// MoveMsg toggles one movement direction
type MoveMsg struct {
	Dir string `json:"dir"` // left, right, up, down
	On  bool   `json:"on"`
}

// IntentMsg replaces all movement flags
type IntentMsg struct {
	L bool `json:"l"`
	R bool `json:"r"`
	U bool `json:"u"`
	D bool `json:"d"`
}

// ShootMsg fires toward a field point
type ShootMsg struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// OverMsg reports a finished run
type OverMsg struct {
	Stats game.Stats `json:"stats"`
	Cause string     `json:"cause"`
}

// LeaderboardEntry represents one row in the leaderboard
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	Username   string `json:"username"`
	Score      int    `json:"score"`
	AmmoMissed int    `json:"ammoMissed"`
	Ammo       int    `json:"ammo"`
}

// ControlMsg is sent by a phone controller to attach to a running session
type ControlMsg struct {
	SID string `json:"sid"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

var directions = map[string]game.Direction{
	"left":  game.Left,
	"right": game.Right,
	"up":    game.Up,
	"down":  game.Down,
}

// rankStats numbers rows that are already ordered by score
func rankStats(rows []game.Stats) []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(rows))
	for i, s := range rows {
		out = append(out, LeaderboardEntry{
			Rank:       i + 1,
			Username:   s.Username,
			Score:      s.Score,
			AmmoMissed: s.AmmoMissed,
			Ammo:       s.Ammo,
		})
	}
	return out
}
