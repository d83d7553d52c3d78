package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chris-regnier/nglint/internal/session"
	"github.com/chris-regnier/nglint/internal/worker"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type wsInbound struct {
	Program string `json:"program"`
}

type wsOutbound struct {
	Type  string         `json:"type"`
	State *session.State `json:"state,omitempty"`
}

func push(ch chan<- wsOutbound, done <-chan struct{}, out wsOutbound) {
	select {
	case ch <- out:
	case <-done:
	}
}

// handleSession runs one live lint session per connection, named by the
// optional file query parameter. Every inbound message replaces the
// document text; every applied result is pushed as a state message.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	h, err := s.newHandler()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		slog.Warn("ws set read deadline", "err", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writeCh := make(chan wsOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	wk := worker.Start(ctx, h)
	defer wk.Close()

	sess := session.New(wk,
		session.WithDebounce(s.debounce),
		session.WithFile(r.URL.Query().Get("file")),
		session.WithRenderer(func(st session.State) {
			push(writeCh, ctx.Done(), wsOutbound{Type: "state", State: &st})
		}),
		session.WithOnError(func(raw string) {
			slog.Debug("ws lint failed", "err", raw)
		}),
	)
	defer sess.Close()
	go func() { _ = sess.Run(ctx, wk.Responses()) }()

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("ws read", "err", err)
			}
			break
		}
		sess.Changed(in.Program)
	}

	cancel()
	<-writerDone
}
