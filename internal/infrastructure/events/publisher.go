// Package events ships application events to the email worker over RabbitMQ.
package events

import (
	"context"
	"fmt"

	"github.com/oksasatya/places-api/internal/domain/service"
	"github.com/oksasatya/places-api/pkg/mailer"
	"github.com/oksasatya/places-api/pkg/mailer/templates"
)

var eventTemplates = map[string]string{
	service.EventUserSignedUp: templates.Welcome,
	service.EventPlaceCreated: templates.PlaceCreated,
}

// jsonPublisher is satisfied by *helpers.RabbitPublisher.
type jsonPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// EmailPublisher turns events into mailer.EmailJob messages.
type EmailPublisher struct {
	pub jsonPublisher
}

func NewEmailPublisher(pub jsonPublisher) *EmailPublisher {
	return &EmailPublisher{pub: pub}
}

func (p *EmailPublisher) Publish(ctx context.Context, ev service.Event) error {
	tmpl, ok := eventTemplates[ev.Name]
	if !ok {
		return fmt.Errorf("no email template for event %q", ev.Name)
	}
	if ev.To == "" {
		return fmt.Errorf("event %q has no recipient", ev.Name)
	}
	return p.pub.PublishJSON(ctx, mailer.EmailJob{To: ev.To, Template: tmpl, Data: ev.Data})
}

// Noop drops every event. Used when RabbitMQ is not configured.
type Noop struct{}

func (Noop) Publish(context.Context, service.Event) error { return nil }

var (
	_ service.EventPublisher = (*EmailPublisher)(nil)
	_ service.EventPublisher = Noop{}
)
