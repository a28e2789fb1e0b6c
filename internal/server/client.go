package server

import (
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/baseraid/internal/session"
)

const (
	writeWait       = 10 * time.Second
	eventBufferSize = 64
)

// client bridges one websocket connection to a battle session.
// readPump and writePump each run in their own goroutine; gorilla
// connections allow one concurrent reader and one concurrent writer.
type client struct {
	conn   *websocket.Conn
	sess   *session.Session
	part   *session.ChannelParticipant
	logger *log.Logger
}

// readPump decodes client frames into session commands.
// Runs until the connection errors or closes.
func (c *client) readPump() {
	defer func() {
		c.sess.Send(session.DisconnectCmd{})
		c.part.Close()
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		env, err := DecodeEnvelope(message)
		if err != nil {
			// Answer through the participant so writePump stays the
			// only writer on the connection.
			c.part.Send(session.ErrorEvent{Code: ErrorCodeBadRequest, Message: err.Error()})
			continue
		}

		cmd, err := DecodeCommand(env)
		if err != nil {
			c.part.Send(session.ErrorEvent{Code: ErrorCodeBadRequest, Message: err.Error()})
			continue
		}

		c.sess.Send(cmd)
	}
}

// writePump forwards session events to the websocket.
// Exits once the participant is done and the event queue is flushed.
func (c *client) writePump() {
	defer func() {
		if n := c.part.Dropped(); n > 0 {
			c.logger.Warn("dropped events for slow reader", "battle", c.sess.ID(), "count", n)
		}
		c.conn.Close()
	}()

	for {
		select {
		case evt := <-c.part.Events():
			if !c.writeEvent(evt) {
				return
			}

		case <-c.part.Done():
			// Flush events queued before the participant closed, the
			// final state is usually among them.
			for {
				select {
				case evt := <-c.part.Events():
					if !c.writeEvent(evt) {
						return
					}
				default:
					//nolint:errcheck // Connection is going away either way
					c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
			}
		}
	}
}

func (c *client) writeEvent(evt session.Event) bool {
	env, err := EncodeEvent(evt)
	if err != nil {
		c.logger.Error("encode event", "battle", c.sess.ID(), "error", err)
		return true
	}

	payload, err := json.Marshal(env)
	if err != nil {
		c.logger.Error("marshal envelope", "battle", c.sess.ID(), "error", err)
		return true
	}

	//nolint:errcheck // A failed deadline surfaces on the write itself
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return false
	}
	return true
}
