package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/nats-io/nats.go"
	"github.com/riskibarqy/release-league/internal/usecase"
)

type recordingConn struct {
	msgs []*nats.Msg
	err  error
}

func (c *recordingConn) PublishMsg(msg *nats.Msg) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

func TestDraftPublisher_PublishDraftEvent(t *testing.T) {
	t.Parallel()

	conn := &recordingConn{}
	p := NewDraftPublisher(conn, "league.draft.", nil)

	event := usecase.DraftEvent{
		Type:       usecase.DraftEventPick,
		LeagueID:   "lg-1",
		DraftID:    "winter-2026",
		UserID:     "alice",
		GameID:     "g-1",
		PickType:   "seasonal",
		SlotIndex:  3,
		Status:     "active",
		OccurredAt: time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC),
	}
	if err := p.PublishDraftEvent(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(conn.msgs) != 1 {
		t.Fatalf("unexpected message count: got=%d want=1", len(conn.msgs))
	}

	msg := conn.msgs[0]
	if msg.Subject != "league.draft.lg-1.draft.pick" {
		t.Fatalf("unexpected subject: %s", msg.Subject)
	}
	if got := msg.Header.Get(nats.MsgIdHdr); got != "lg-1:winter-2026:draft.pick:3:alice" {
		t.Fatalf("unexpected msg id: %s", got)
	}

	var decoded usecase.DraftEvent
	if err := sonic.Unmarshal(msg.Data, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.GameID != "g-1" || decoded.SlotIndex != 3 {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestDraftPublisher_WrapsPublishError(t *testing.T) {
	t.Parallel()

	conn := &recordingConn{err: nats.ErrConnectionClosed}
	p := NewDraftPublisher(conn, "", nil)

	err := p.PublishDraftEvent(context.Background(), usecase.DraftEvent{Type: usecase.DraftEventSkip, LeagueID: "lg-1"})
	if !errors.Is(err, nats.ErrConnectionClosed) {
		t.Fatalf("expected wrapped connection error, got %v", err)
	}
}

func TestSubjectToken(t *testing.T) {
	t.Parallel()

	if got := subjectToken("a.b*c>d"); got != "a_b_c_d" {
		t.Fatalf("unexpected token: %s", got)
	}
	if got := subjectToken(" "); got != "_" {
		t.Fatalf("unexpected blank token: %s", got)
	}
}
