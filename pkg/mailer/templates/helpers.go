package templates

import (
	"strings"
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithApp(name, supportURL string) Option {
	return func(d *EmailData) {
		d.AppName = name
		d.SupportURL = supportURL
	}
}

// WithPlace fills the place fields; baseURL is the public front-end root, may be empty.
func WithPlace(id, title, address, baseURL string) Option {
	return func(d *EmailData) {
		d.PlaceID = id
		d.PlaceTitle = title
		d.PlaceAddress = address
		if b := strings.TrimRight(baseURL, "/"); b != "" {
			d.PlaceURL = b + "/places/" + id
		}
	}
}

func NewBaseEmailData(typ, name, email string, opts ...Option) EmailData {
	d := EmailData{Name: name, Email: email, Type: typ}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(Welcome, name, email, opts...))
}

func NewPlaceCreatedData(name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(PlaceCreated, name, email, opts...))
}
