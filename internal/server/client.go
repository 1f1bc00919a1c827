package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"hideseek-arcade/internal/game"
	"hideseek-arcade/internal/store"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 120
	requestTimeout    = 5 * time.Second
	leaderboardSize   = 20
)

// Client represents a WebSocket connection
type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	sessionID    string
	remoteAddr   string
	isController bool
	msgCount     int
	msgResetAt   time.Time
	username     string // "" = not logged in
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// Prefixes with 0xFF marker byte so WritePump can distinguish from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF // binary marker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgStart:
		c.handleStart()
	case MsgPause:
		c.handlePause()
	case MsgMove:
		c.handleMove(env.D)
	case MsgIntent:
		c.handleIntent(env.D)
	case MsgShoot:
		c.handleShoot(env.D)
	case MsgLeaderboard:
		c.handleLeaderboard()
	case MsgControl:
		c.handleControl(env.D)
	}
}

func (c *Client) handleLogin(data json.RawMessage) {
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	username, token, err := c.hub.auth.Login(ctx, msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if c.hub.analytics != nil {
		c.hub.analytics.Track(store.EvtLogin, username, "", "")
	}
	c.loggedIn(ctx, username, token)
}

func (c *Client) handleAuth(data json.RawMessage) {
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendError(ErrInvalidToken.Error())
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	c.loggedIn(ctx, username, msg.Token)
}

func (c *Client) loggedIn(ctx context.Context, username, token string) {
	if c.sessionID != "" && username != c.username {
		c.hub.sessions.RemoveSession(ctx, c.sessionID)
		c.sessionID = ""
	}
	c.username = username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: username,
		Stats:    store.LoadStats(ctx, c.hub.db, username),
	}})
}

// handleStart resumes the client's run, or begins a new one seeded from stored stats
func (c *Client) handleStart() {
	if c.isController {
		return
	}
	if c.username == "" {
		c.sendError("not authenticated")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	sess := c.hub.sessions.GetSession(c.sessionID)
	if sess != nil {
		if over, _ := sess.Game.Over(); over {
			c.hub.sessions.RemoveSession(ctx, sess.ID)
			sess = nil
		}
	}
	if sess == nil {
		var err error
		sess, err = c.hub.sessions.CreateSession(ctx, c.username, c)
		if errors.Is(err, ErrTooManySessions) {
			c.sendError(err.Error())
			return
		}
		if err != nil {
			log.Printf("create session: %v", err)
			c.sendError("could not start")
			return
		}
		c.sessionID = sess.ID
	}

	snap := sess.Game.Snapshot()
	c.SendJSON(Envelope{T: MsgStarted, Data: StartedMsg{
		SessionID: sess.ID,
		Width:     snap.Width,
		Height:    snap.Height,
		Stats:     sess.Game.Stats(),
	}})
	sess.Game.Start()
}

func (c *Client) handlePause() {
	if c.isController {
		return
	}
	if sess := c.hub.sessions.GetSession(c.sessionID); sess != nil {
		sess.Game.Stop()
		c.SendJSON(Envelope{T: MsgPaused, Data: sess.Game.Stats()})
	}
}

// target returns the run this connection drives, as owner or controller
func (c *Client) target() *game.Session {
	sess := c.hub.sessions.GetSession(c.sessionID)
	if sess == nil {
		return nil
	}
	return sess.Game
}

func (c *Client) handleMove(data json.RawMessage) {
	var msg MoveMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	dir, ok := directions[msg.Dir]
	if !ok {
		return
	}
	if g := c.target(); g != nil {
		g.SetMove(dir, msg.On)
	}
}

func (c *Client) handleIntent(data json.RawMessage) {
	var msg IntentMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if g := c.target(); g != nil {
		g.SetIntent(game.Intent{Left: msg.L, Right: msg.R, Up: msg.U, Down: msg.D})
	}
}

func (c *Client) handleShoot(data json.RawMessage) {
	var msg ShootMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if g := c.target(); g != nil {
		g.ShootAt(msg.X, msg.Y)
	}
}

func (c *Client) handleLeaderboard() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	rows, err := c.hub.db.TopStats(ctx, leaderboardSize)
	if err != nil {
		log.Printf("leaderboard: %v", err)
		c.sendError("leaderboard unavailable")
		return
	}
	c.SendJSON(Envelope{T: MsgScores, Data: rankStats(rows)})
}

func (c *Client) handleControl(data json.RawMessage) {
	var msg ControlMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if c.sessionID != "" {
		c.sendError("already in a session")
		return
	}
	sess := c.hub.sessions.GetSession(msg.SID)
	if sess == nil {
		c.sendError("session not found")
		return
	}

	c.sessionID = msg.SID
	c.isController = true
	sess.AddController(c)
	c.SendJSON(Envelope{T: MsgControlOK, Data: map[string]string{"sid": sess.ID, "username": sess.Username}})
}
