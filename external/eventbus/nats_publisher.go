package eventbus

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/nats-io/nats.go"
	"github.com/riskibarqy/release-league/internal/platform/logging"
	"github.com/riskibarqy/release-league/internal/usecase"
)

const defaultSubjectPrefix = "league.draft"

type Config struct {
	URL           string
	SubjectPrefix string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
	Logger        *logging.Logger
}

type msgPublisher interface {
	PublishMsg(msg *nats.Msg) error
}

// DraftPublisher fans draft events out on core NATS subjects of the form
// {prefix}.{league_id}.{event_type}. Subscribers resync from the read model
// when they miss a message, so delivery is best effort.
type DraftPublisher struct {
	conn          msgPublisher
	closer        func()
	subjectPrefix string
	logger        *logging.Logger
}

func Connect(cfg Config) (*DraftPublisher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		url = nats.DefaultURL
	}
	reconnectWait := cfg.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}

	opts := []nats.Option{
		nats.Name(firstNonEmpty(cfg.Name, "release-league")),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error("nats async error", "error", err)
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	p := NewDraftPublisher(nc, cfg.SubjectPrefix, logger)
	p.closer = nc.Close
	return p, nil
}

func NewDraftPublisher(conn msgPublisher, subjectPrefix string, logger *logging.Logger) *DraftPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	subjectPrefix = strings.Trim(strings.TrimSpace(subjectPrefix), ".")
	if subjectPrefix == "" {
		subjectPrefix = defaultSubjectPrefix
	}

	return &DraftPublisher{
		conn:          conn,
		subjectPrefix: subjectPrefix,
		logger:        logger,
	}
}

func (p *DraftPublisher) Subject(event usecase.DraftEvent) string {
	return p.subjectPrefix + "." + subjectToken(event.LeagueID) + "." + string(event.Type)
}

func (p *DraftPublisher) PublishDraftEvent(ctx context.Context, event usecase.DraftEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal draft event: %w", err)
	}

	subject := p.Subject(event)
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{string(event.Type)},
			"League-ID":  []string{event.LeagueID},
			"Draft-ID":   []string{event.DraftID},
			// Lets a JetStream stream bound to the subject drop redeliveries.
			nats.MsgIdHdr: []string{messageID(event)},
		},
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish draft event subject=%s: %w", subject, err)
	}

	p.logger.DebugContext(ctx, "draft event published", "subject", subject, "slot_index", event.SlotIndex)
	return nil
}

func (p *DraftPublisher) Close() {
	if p.closer != nil {
		p.closer()
	}
}

func messageID(event usecase.DraftEvent) string {
	return strings.Join([]string{
		event.LeagueID,
		event.DraftID,
		string(event.Type),
		strconv.Itoa(event.SlotIndex),
		event.UserID,
	}, ":")
}

// subjectToken keeps ids from introducing extra subject levels or wildcards.
func subjectToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
