// Package ws is the websocket gateway: it accepts connections, performs
// the HELLO/WELCOME handshake, validates and decodes intent messages into
// events for the tick loop, and relays outbound deltas and chat.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"blockyard.gg/internal/config"
	"blockyard.gg/internal/game"
	"blockyard.gg/internal/game/event"
	"blockyard.gg/internal/game/session"
	"blockyard.gg/internal/game/world"
	"blockyard.gg/internal/protocol"
)

const outQueueSize = 32

type Server struct {
	game    *game.Game
	cfg     config.Config
	log     *log.Logger
	schemas *protocol.Validator

	upgrader websocket.Upgrader
}

func NewServer(g *game.Game, cfg config.Config, schemas *protocol.Validator, logger *log.Logger) *Server {
	return &Server{
		game:    g,
		cfg:     cfg,
		log:     logger,
		schemas: schemas,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.handshake(conn)
		if sess == nil {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-sess.Out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeIntent {
				continue
			}
			if err := protocol.ValidateBytes(s.schemas.Intent, msg); err != nil {
				continue
			}
			var intent protocol.IntentMsg
			if err := json.Unmarshal(msg, &intent); err != nil {
				continue
			}
			if intent.ProtocolVersion != protocol.Version {
				continue
			}
			ev, ok := s.decodeIntent(sess.ID, intent)
			if !ok {
				continue
			}
			s.game.Inbox() <- ev
		}

		// Cleanup.
		s.game.Leave() <- sess.ID
	}
}

func (s *Server) handshake(conn *websocket.Conn) *session.Session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closePolicy(conn, "expected HELLO")
		return nil
	}
	if err := protocol.ValidateBytes(s.schemas.Hello, msg); err != nil {
		closePolicy(conn, "malformed HELLO")
		return nil
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		closePolicy(conn, "bad protocol_version")
		return nil
	}
	if !s.authorize(hello) {
		closePolicy(conn, "unauthorized")
		return nil
	}

	sess := &session.Session{
		ID:   uuid.NewString(),
		Name: hello.PlayerName,
		Out:  make(chan []byte, outQueueSize),
	}

	respCh := make(chan protocol.WelcomeMsg, 1)
	s.game.Join() <- game.JoinRequest{Session: sess, Resp: respCh}
	welcome := <-respCh

	if err := writeJSON(conn, welcome); err != nil {
		s.game.Leave() <- sess.ID
		return nil
	}
	return sess
}

// authorize applies the configured connection mode. Only velocity mode
// carries a gateway-side check; the rest select upstream behavior that is
// out of scope here.
func (s *Server) authorize(hello protocol.HelloMsg) bool {
	if s.cfg.ConnectionMode != config.ModeVelocity {
		return true
	}
	return hello.Auth != nil && hello.Auth.Secret == s.cfg.VelocitySecret
}

// decodeIntent turns a validated intent message into a gameplay event.
// Positions outside the bootstrapped region are rejected here: the core
// treats an unloaded-chunk mutation as a fatal contract violation, so the
// gateway guarantees it only forwards reachable coordinates.
func (s *Server) decodeIntent(clientID string, m protocol.IntentMsg) (event.Gameplay, bool) {
	pos := world.Vec3i{X: m.Pos[0], Y: m.Pos[1], Z: m.Pos[2]}
	switch m.Action {
	case protocol.ActionLook:
		if m.Yaw == nil {
			return nil, false
		}
		return event.UpdateLook{Client: clientID, Yaw: *m.Yaw}, true
	case protocol.ActionSneak:
		return event.StartSneaking{Client: clientID}, true
	case protocol.ActionDigStart:
		if !s.posInWorld(pos, 0) {
			return nil, false
		}
		return event.StartDigging{Client: clientID, Pos: pos}, true
	case protocol.ActionDigFinish:
		if !s.posInWorld(pos, 0) {
			return nil, false
		}
		return event.FinishDigging{Client: clientID, Pos: pos}, true
	case protocol.ActionUseItem:
		face, ok := event.ParseFace(m.Face)
		if !ok {
			return nil, false
		}
		hand, ok := event.ParseHand(m.Hand)
		if !ok {
			return nil, false
		}
		// The target may be the face neighbor, so keep a one-block margin.
		if !s.posInWorld(pos, 1) {
			return nil, false
		}
		return event.UseItemOnBlock{
			Client: clientID,
			Pos:    pos,
			Face:   face,
			Cursor: m.Cursor,
			Hand:   hand,
		}, true
	}
	return nil, false
}

func (s *Server) posInWorld(pos world.Vec3i, margin int) bool {
	if pos.Y < margin || pos.Y >= world.ChunkHeight-margin {
		return false
	}
	r := s.game.Config().ChunkRadius * world.ChunkSize
	return pos.X >= -r+margin && pos.X < r-margin &&
		pos.Z >= -r+margin && pos.Z < r-margin
}

func closePolicy(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
