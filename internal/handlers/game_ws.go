// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/blanks/internal/game"
	"github.com/jason-s-yu/blanks/internal/middleware"
	"github.com/jason-s-yu/blanks/internal/models"
	"github.com/sirupsen/logrus"
)

// Client message types accepted on /ws.
const (
	MsgCreateGame      = "create_game"
	MsgJoinGame        = "join_game"
	MsgLeaveGame       = "leave_game"
	MsgSetDecks        = "set_decks"
	MsgUpdateSettings  = "update_settings"
	MsgStartGame       = "start_game"
	MsgSubmitSelection = "submit_selection"
	MsgSelectWinner    = "select_winner"
	MsgDiscardHand     = "discard_hand"
	MsgPing            = "ping"
)

const eventPong game.GameEventType = "pong"

// readLimit caps a single client frame.
const readLimit = 16 << 10

// ClientMessage is every message a client can send. Only the fields relevant
// to Type are read.
type ClientMessage struct {
	Type     string         `json:"type"`
	Name     string         `json:"name,omitempty"`
	Secret   string         `json:"secret,omitempty"`
	GameID   uuid.UUID      `json:"gameId,omitempty"`
	Decks    []string       `json:"decks,omitempty"`
	Settings *game.Settings `json:"settings,omitempty"`
	Cards    []string       `json:"cards,omitempty"`
	Token    string         `json:"token,omitempty"`
}

var errUnknownMessage = errors.New("unknown message type")

// GameWSHandler upgrades /ws?name=<player name> to a WebSocket, registers the
// player with the registry and the hub, and runs the read loop until the
// client goes away.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: gs.OriginPatterns,
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the "+Subprotocol+" subprotocol")
			return
		}

		name, err := validatePlayerName(r.URL.Query().Get("name"), gs.Registry.Limits().MaxPlayerNameLength)
		if err != nil {
			c.Close(InvalidPlayerNameError, err.Error())
			return
		}
		c.SetReadLimit(readLimit)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		conn := &Connection{
			PlayerID: uuid.New(),
			Username: name,
			Cancel:   cancel,
			OutChan:  make(chan []byte, outBuffer),
		}
		gs.Hub.Register(conn)
		gs.Registry.Connect(models.User{ID: conn.PlayerID, Username: name})
		middleware.LogWebSocketConnect(logger, remoteAddr, conn.PlayerID.String())

		go writePump(ctx, c, conn, logger)

		err = readPump(ctx, c, gs.Registry, conn, logger)

		gs.Registry.Disconnect(conn.PlayerID)
		gs.Hub.Unregister(conn)
		middleware.LogWebSocketDisconnect(logger, remoteAddr, conn.PlayerID.String(), err)
	}
}

// readPump decodes client frames and dispatches them until the connection
// fails or ctx is cancelled. It returns the error that ended the loop, or nil
// on a normal closure.
func readPump(ctx context.Context, c *websocket.Conn, reg *game.Registry, conn *Connection, logger *logrus.Logger) error {
	log := logger.WithField("player", conn.PlayerID)
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			log.Warnf("ignoring non-text message type %d", msgType)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.WithError(err).Warn("invalid JSON from client")
			reply(conn, game.NoticeEvent(game.NoticeError, "Invalid JSON format."))
			continue
		}
		log.Debugf("received %q", msg.Type)

		if msg.Type == MsgPing {
			reply(conn, game.GameEvent{Type: eventPong})
			continue
		}
		if err := dispatch(reg, conn.PlayerID, msg); err != nil {
			if errors.Is(err, errUnknownMessage) {
				log.Warnf("unknown message type %q", msg.Type)
			} else {
				log.WithError(err).Debugf("%s rejected", msg.Type)
			}
			reply(conn, game.ErrorNotice(err))
		}
	}
}

// dispatch routes a decoded message to the registry.
func dispatch(reg *game.Registry, playerID uuid.UUID, msg ClientMessage) error {
	switch msg.Type {
	case MsgCreateGame:
		_, err := reg.CreateGame(playerID, msg.Name, msg.Secret)
		return err
	case MsgJoinGame:
		return reg.JoinGame(playerID, msg.GameID, msg.Secret)
	case MsgLeaveGame:
		return reg.LeaveGame(playerID)
	case MsgSetDecks:
		return reg.SetDecks(playerID, msg.Decks)
	case MsgUpdateSettings:
		if msg.Settings == nil {
			return game.ErrInvalidSettings
		}
		return reg.UpdateSettings(playerID, *msg.Settings)
	case MsgStartGame:
		return reg.StartGame(playerID)
	case MsgSubmitSelection:
		return reg.SubmitSelection(playerID, msg.Cards)
	case MsgSelectWinner:
		return reg.SelectWinner(playerID, msg.Token)
	case MsgDiscardHand:
		return reg.DiscardHand(playerID)
	default:
		return fmt.Errorf("%w: %s", errUnknownMessage, msg.Type)
	}
}

// reply queues an event for the connection's own write pump.
func reply(conn *Connection, ev game.GameEvent) {
	select {
	case conn.OutChan <- game.EncodeEvent(ev):
	default:
	}
}

// writePump drains the connection's out channel and pings the client
// periodically.
func writePump(ctx context.Context, c *websocket.Conn, conn *Connection, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer c.Close(websocket.StatusGoingAway, "write pump stopping")

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-conn.OutChan:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to websocket for player %v: %v", conn.PlayerID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("failed to ping player %v: %v. Assuming disconnect.", conn.PlayerID, err)
				return
			}
		}
	}
}
