// Package publish streams simulation snapshots and lifecycle events to NATS
package publish

import (
	"encoding/json"
	"sync/atomic"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/parksim/config"
	"github.com/lixenwraith/parksim/engine"
)

// Conn is the subset of *nats.Conn the publisher uses
type Conn interface {
	Publish(subj string, data []byte) error
	Close()
}

// Publisher is an engine.Sink writing JSON to <subject>.tick and <subject>.events.<kind>
type Publisher struct {
	conn    Conn
	subject string
	log     *logrus.Entry

	published atomic.Int64
	failed    atomic.Int64
}

var _ engine.Sink = (*Publisher)(nil)

// Connect dials cfg.URL; reconnects are handled by the client library
func Connect(cfg config.NATS, log *logrus.Entry) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("parksim"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.WithError(err).Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("url", nc.ConnectedUrl()).Info("nats reconnected")
		}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "connect nats %s", cfg.URL)
	}
	log.WithFields(logrus.Fields{"url": cfg.URL, "subject": cfg.Subject}).Info("nats publisher connected")
	return New(nc, cfg.Subject, log), nil
}

// New wraps an established connection
func New(conn Conn, subject string, log *logrus.Entry) *Publisher {
	return &Publisher{conn: conn, subject: subject, log: log}
}

// TickSubject is where full snapshots go
func (p *Publisher) TickSubject() string {
	return p.subject + ".tick"
}

// EventSubject is where events of kind go
func (p *Publisher) EventSubject(kind engine.EventKind) string {
	return p.subject + ".events." + string(kind)
}

// Publish implements engine.Sink; failures are counted and logged, never returned
func (p *Publisher) Publish(snap engine.Snapshot) {
	p.send(p.TickSubject(), snap)
	for _, ev := range snap.Events {
		p.send(p.EventSubject(ev.Kind), ev)
	}
}

func (p *Publisher) send(subject string, v any) {
	data, err := json.Marshal(v)
	if err == nil {
		err = p.conn.Publish(subject, data)
	}
	if err != nil {
		// Only the first failure of a streak is logged at warn
		if p.failed.Add(1) == 1 {
			p.log.WithError(err).WithField("subject", subject).Warn("nats publish failed")
		} else {
			p.log.WithError(err).WithField("subject", subject).Debug("nats publish failed")
		}
		return
	}
	p.failed.Store(0)
	p.published.Add(1)
}

// Published returns the number of successful messages
func (p *Publisher) Published() int64 {
	return p.published.Load()
}

// Close closes the connection
func (p *Publisher) Close() {
	p.conn.Close()
}
