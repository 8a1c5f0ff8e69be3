package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/places-api/config"
	"github.com/oksasatya/places-api/internal/application"
	"github.com/oksasatya/places-api/internal/container"
	"github.com/oksasatya/places-api/pkg/apperror"
	"github.com/oksasatya/places-api/pkg/helpers"
)

// seed creates a demo user with one place through the same services the API
// uses, so the back-reference list is populated exactly as in production.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)

	ctx := context.Background()
	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}
	defer c.Close()

	email := "demo@example.com"
	password := "password123"
	name := "Demo User"

	res, err := c.UserService.Signup(ctx, application.SignupInput{Name: name, Email: email, Password: password})
	switch {
	case apperror.KindOf(err) == apperror.KindConflict:
		res, err = c.UserService.Login(ctx, email, password)
		if err != nil {
			log.Fatalf("demo user exists but login failed: %v", err)
		}
		fmt.Printf("demo user already present: id=%s email=%s\n", res.UserID, email)
	case err != nil:
		log.Fatalf("failed to seed user: %v", err)
	default:
		fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", res.UserID, email, name, password)
	}

	places, err := c.PlaceService.ListPlacesByUser(ctx, res.UserID)
	if err != nil {
		log.Fatalf("failed to list places: %v", err)
	}
	if len(places) > 0 {
		fmt.Printf("demo user already owns %d place(s)\n", len(places))
		return
	}

	p, err := c.PlaceService.CreatePlace(ctx, application.CreatePlaceInput{
		CreatorID:   res.UserID,
		Title:       "Empire State Building",
		Description: "One of the most famous sky scrapers in the world!",
		Address:     "20 W 34th St, New York, NY 10001",
	})
	if err != nil {
		log.Fatalf("failed to seed place: %v", err)
	}
	fmt.Printf("seeded place: id=%s title=%q location=%.4f,%.4f\n", p.ID, p.Title, p.Location.Lat, p.Location.Lng)
}
