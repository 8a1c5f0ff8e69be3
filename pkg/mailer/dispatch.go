package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oksasatya/places-api/pkg/mailer/templates"
)

// ErrPermanent marks a job that will never succeed and must not be requeued.
var ErrPermanent = errors.New("permanent email failure")

// Dispatcher turns queue payloads into sent emails.
type Dispatcher struct {
	Sender Sender
}

func NewDispatcher(s Sender) *Dispatcher {
	return &Dispatcher{Sender: s}
}

// Handle decodes body, renders the template if any and sends it.
// Decode and render failures wrap ErrPermanent; send failures do not.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: bad message: %v", ErrPermanent, err)
	}
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", ErrPermanent)
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := templates.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: render %s: %v", ErrPermanent, job.Template, err)
		}
		subject, text, html = s, t, h
	}
	if subject == "" || (text == "" && html == "") {
		return fmt.Errorf("%w: empty email", ErrPermanent)
	}
	return d.Sender.Send(ctx, job.To, subject, text, html)
}
