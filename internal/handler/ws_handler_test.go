package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prepdesk/prepdesk-backend/internal/config"
	"github.com/prepdesk/prepdesk-backend/internal/middleware"
	"github.com/prepdesk/prepdesk-backend/internal/model"
	"github.com/prepdesk/prepdesk-backend/internal/service"
	"github.com/rs/zerolog"
)

// wsFrame is the client-side view of the clock stream events.
type wsFrame struct {
	Event            string  `json:"event"`
	IsExam           bool    `json:"is_exam"`
	IsSubmitted      bool    `json:"is_submitted"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

type wsFixture struct {
	env   *stubEnv
	svc   *service.SessionService
	srv   *httptest.Server
	token string
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	env := newStubEnv()
	svc := service.NewSessionService(
		stubSessions{env}, stubResults{env}, stubBank{env},
		stubSets{env}, stubEnrollments{}, stubDeadlines{},
	)

	cfg := &config.Config{JWTSecret: "clock-stream-test", JWTExpiry: time.Hour}
	auth := service.NewAuthService(cfg, nil)
	token, err := auth.GenerateToken(&model.User{ID: testUserID, Role: model.RoleUser})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	h := NewWSHandler(svc, zerolog.Nop(), nil)
	r := gin.New()
	wsGroup := r.Group("/ws/v1", middleware.RequireWSAuth(auth))
	wsGroup.GET("/sessions/:session_id/clock", h.ClockStream)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &wsFixture{env: env, svc: svc, srv: srv, token: token}
}

func (f *wsFixture) startExam(t *testing.T) uuid.UUID {
	t.Helper()
	isExam := true
	created, err := f.svc.Create(context.Background(), testUserID, model.CreateSessionRequest{
		QuestionSetID: f.env.set.ID.String(),
		IsExam:        &isExam,
	})
	if err != nil {
		t.Fatalf("create exam session: %v", err)
	}
	return created.ID
}

func (f *wsFixture) dial(t *testing.T, sessionID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") +
		"/ws/v1/sessions/" + sessionID.String() + "/clock?token=" + f.token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial clock stream: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var frame wsFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

// A client pinging while the ticker fires must get intact pong and tick
// frames back; both writers share one connection.
func TestClockStreamPongsWhileTicking(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, f.startExam(t))

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if err := conn.WriteJSON(map[string]string{"action": "ping"}); err != nil {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	var ticks, pongs int
	deadline := time.Now().Add(5 * time.Second)
	for (ticks == 0 || pongs == 0) && time.Now().Before(deadline) {
		switch frame := readFrame(t, conn); frame.Event {
		case "tick":
			ticks++
			if !frame.IsExam || frame.RemainingSeconds <= 0 {
				t.Errorf("bad tick frame: %+v", frame)
			}
		case "pong":
			pongs++
		default:
			t.Fatalf("unexpected event %q", frame.Event)
		}
	}
	close(stop)
	wg.Wait()

	if ticks == 0 || pongs == 0 {
		t.Fatalf("ticks = %d, pongs = %d, want both > 0", ticks, pongs)
	}
}

func TestClockStreamEndsOnSubmit(t *testing.T) {
	f := newWSFixture(t)
	sessionID := f.startExam(t)
	conn := f.dial(t, sessionID)

	if frame := readFrame(t, conn); frame.Event != "tick" {
		t.Fatalf("expected a tick first, got %q", frame.Event)
	}

	if _, err := f.svc.Submit(context.Background(), testUserID, sessionID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if frame := readFrame(t, conn); frame.Event == "submitted" {
			return
		}
	}
	t.Fatal("never received the submitted event")
}
