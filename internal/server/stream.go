package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/shouni/go-storyboard-kit/pkg/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// snapshotQueue は Board の監視コールバックから送信ループへスナップショットを渡します。
// コールバックはパイプラインのゴルーチン上で動くため、書き込み側はブロックしません。
type snapshotQueue struct {
	mu      sync.Mutex
	pending []domain.Storyboard
	notify  chan struct{}
}

func newSnapshotQueue() *snapshotQueue {
	return &snapshotQueue{notify: make(chan struct{}, 1)}
}

func (q *snapshotQueue) push(sb domain.Storyboard) {
	q.mu.Lock()
	q.pending = append(q.pending, sb)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *snapshotQueue) drain() []domain.Storyboard {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin は Origin ヘッダーがないか、許可済みか、同一ホストの場合に接続を受け入れます。
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.opts.AllowedOrigins) == 0 || slices.Contains(s.opts.AllowedOrigins, "*") || slices.Contains(s.opts.AllowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// streamStoryboard は現在の状態を送ったあと、状態遷移のたびにスナップショットを1件ずつ送ります。
// 実行が終端状態に達するとクローズします。
func (s *Server) streamStoryboard(c *gin.Context) {
	r, ok := s.lookupRun(c)
	if !ok {
		return
	}

	conn, err := s.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("WebSocket へのアップグレードに失敗しました", "run_id", r.id, "error", err)
		return
	}
	defer conn.Close()

	queue := newSnapshotQueue()
	stopWatch := r.board.Watch(queue.push)
	defer stopWatch()

	closed := make(chan struct{})
	go readPump(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	current := r.board.Snapshot()
	if err := writeSnapshot(conn, current); err != nil {
		return
	}
	lastVersion := current.Version
	if current.Status.Terminal() {
		closeStream(conn)
		return
	}

	for {
		select {
		case <-queue.notify:
			for _, snap := range queue.drain() {
				if snap.Version <= lastVersion {
					continue
				}
				if err := writeSnapshot(conn, snap); err != nil {
					slog.Debug("スナップショットの送信に失敗しました", "run_id", r.id, "error", err)
					return
				}
				lastVersion = snap.Version
				if snap.Status.Terminal() {
					closeStream(conn)
					return
				}
			}
		case <-r.done:
			// 終端の遷移は done より先に queue に積まれている
			if len(queue.notify) == 0 {
				closeStream(conn)
				return
			}
		case <-ticker.C:
			s.runs.Touch(r.id)
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func writeSnapshot(conn *websocket.Conn, sb domain.Storyboard) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(sb)
}

func closeStream(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "storyboard finished")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// readPump はクライアントからの切断と pong を処理します。
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
