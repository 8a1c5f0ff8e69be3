package application

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/places-api/internal/domain/entity"
	repo "github.com/oksasatya/places-api/internal/domain/repository"
	"github.com/oksasatya/places-api/internal/domain/service"
	"github.com/oksasatya/places-api/pkg/apperror"
	"github.com/oksasatya/places-api/pkg/helpers"
	"github.com/oksasatya/places-api/pkg/mailer/templates"
)

const (
	msgPlaceNotFound  = "Could not find a place for this ID."
	msgNoLocation     = "Could not find location for the specified address."
	msgBadLocation    = "Incomplete location data received from geolocation API."
	msgGeocoderDown   = "Could not reach the geolocation service, please try again later."
	msgCreateFailed   = "Creating place failed, please try again."
	msgDeleteFailed   = "Something went wrong, could not delete the place."
	msgNotOwnerEdit   = "You are not allowed to edit this place."
	msgNotOwnerDelete = "You are not allowed to delete this place."
)

// errPlaceGone means a concurrent delete removed the place first.
var errPlaceGone = errors.New("place already deleted")

// PlaceService creates and deletes places while keeping User.PlaceIDs in
// step with the place store. Both writes of a create or delete go through
// one unit of work, so either both land or neither does. The service holds
// no state between calls and never retries.
type PlaceService struct {
	Users        repo.UserRepository
	Places       repo.PlaceRepository
	UoW          repo.UnitOfWork
	Geocoder     service.Geocoder
	Images       service.ImageStore
	Indexer      service.PlaceIndexer
	Events       service.EventPublisher
	Logger       *logrus.Logger
	DefaultImage string
	Notify       Notify
}

func NewPlaceService(users repo.UserRepository, places repo.PlaceRepository, uow repo.UnitOfWork, geocoder service.Geocoder, images service.ImageStore, indexer service.PlaceIndexer, events service.EventPublisher, logger *logrus.Logger, defaultImage string) *PlaceService {
	return &PlaceService{
		Users:        users,
		Places:       places,
		UoW:          uow,
		Geocoder:     geocoder,
		Images:       images,
		Indexer:      indexer,
		Events:       events,
		Logger:       logger,
		DefaultImage: defaultImage,
	}
}

type CreatePlaceInput struct {
	CreatorID   string
	Title       string
	Description string
	Address     string
	Image       string
}

func (s *PlaceService) CreatePlace(ctx context.Context, in CreatePlaceInput) (*entity.Place, error) {
	coords, err := s.Geocoder.ResolveAddress(ctx, in.Address)
	if err != nil {
		return nil, geocodingError(err)
	}

	owner, err := s.Users.GetByID(ctx, in.CreatorID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("Could not find user for provided id.")
		}
		return nil, apperror.Internal(msgCreateFailed, err)
	}

	image := in.Image
	if image == "" {
		image = s.DefaultImage
	}
	p := &entity.Place{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		Location:    entity.Location{Lat: coords.Lat, Lng: coords.Lon},
		Image:       image,
		CreatorID:   owner.ID,
		Status:      entity.PlaceStatusPending,
	}

	// The owner row is locked before the place insert takes its foreign-key
	// share lock; the other order deadlocks two creates for one user.
	err = repo.RunInTx(ctx, s.UoW, func(ctx context.Context, tx repo.Tx) error {
		u, err := tx.Users().GetByIDForUpdate(ctx, owner.ID)
		if err != nil {
			return err
		}
		if err := tx.Places().Create(ctx, p); err != nil {
			return err
		}
		u.AddPlace(p.ID)
		return tx.Users().Update(ctx, u)
	})
	if err != nil {
		helpers.LogError(s.Logger, "create place transaction failed", err, logrus.Fields{"user_id": owner.ID, "place_id": p.ID})
		return nil, apperror.Wrap(apperror.KindTransactionFailed, msgCreateFailed, err)
	}
	p.Status = entity.PlaceStatusCommitted
	helpers.LogInfo(s.Logger, "place created", logrus.Fields{"user_id": owner.ID, "place_id": p.ID})

	s.index(ctx, p)
	s.publish(ctx, service.Event{
		Name: service.EventPlaceCreated,
		To:   owner.Email,
		Data: templates.NewPlaceCreatedData(owner.Name, owner.Email,
			templates.WithApp(s.Notify.AppName, s.Notify.SupportURL),
			templates.WithPlace(p.ID, p.Title, p.Address, s.Notify.FrontendURL),
			templates.WithTime(p.CreatedAt)),
	})
	return p, nil
}

// UpdatePlace changes title and description only, so it needs no unit of work.
func (s *PlaceService) UpdatePlace(ctx context.Context, placeID, requesterID, title, description string) (*entity.Place, error) {
	p, err := s.getPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if p.CreatorID != requesterID {
		return nil, apperror.Forbidden(msgNotOwnerEdit)
	}

	p.Title = title
	p.Description = description
	if err := s.Places.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound(msgPlaceNotFound)
		}
		return nil, apperror.Internal("Something went wrong, could not update the place.", err)
	}
	s.index(ctx, p)
	return p, nil
}

func (s *PlaceService) DeletePlace(ctx context.Context, placeID, requesterID string) error {
	p, err := s.getPlace(ctx, placeID)
	if err != nil {
		return err
	}
	if p.CreatorID != requesterID {
		return apperror.Forbidden(msgNotOwnerDelete)
	}

	// Same lock order as CreatePlace: owner row first.
	err = repo.RunInTx(ctx, s.UoW, func(ctx context.Context, tx repo.Tx) error {
		u, err := tx.Users().GetByIDForUpdate(ctx, p.CreatorID)
		if err != nil {
			return err
		}
		if err := tx.Places().Delete(ctx, p.ID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return errPlaceGone
			}
			return err
		}
		u.RemovePlace(p.ID)
		return tx.Users().Update(ctx, u)
	})
	if errors.Is(err, errPlaceGone) {
		return apperror.NotFound(msgPlaceNotFound)
	}
	if err != nil {
		helpers.LogError(s.Logger, "delete place transaction failed", err, logrus.Fields{"user_id": p.CreatorID, "place_id": p.ID})
		return apperror.Wrap(apperror.KindTransactionFailed, msgDeleteFailed, err)
	}
	helpers.LogInfo(s.Logger, "place deleted", logrus.Fields{"user_id": p.CreatorID, "place_id": p.ID})

	if s.Indexer != nil {
		if err := s.Indexer.Remove(ctx, p.ID); err != nil {
			helpers.LogWarn(s.Logger, "unindex place failed", err, logrus.Fields{"place_id": p.ID})
		}
	}
	s.ReleaseImage(ctx, p.Image)
	return nil
}

// ReleaseImage deletes an image reference, leaving the shared placeholder alone.
// Failures are logged and otherwise ignored.
func (s *PlaceService) ReleaseImage(ctx context.Context, ref string) {
	if ref == "" || ref == s.DefaultImage || s.Images == nil {
		return
	}
	if err := s.Images.Delete(ctx, ref); err != nil {
		helpers.LogWarn(s.Logger, "release image failed", err, logrus.Fields{"image": ref})
	}
}

func (s *PlaceService) GetPlace(ctx context.Context, placeID string) (*entity.Place, error) {
	return s.getPlace(ctx, placeID)
}

// ListPlacesByUser returns the user's places in PlaceIDs order. An unknown
// user has no places, so it gets an empty list rather than an error.
func (s *PlaceService) ListPlacesByUser(ctx context.Context, userID string) ([]*entity.Place, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return []*entity.Place{}, nil
		}
		return nil, apperror.Internal("Fetching places failed, please try again later.", err)
	}
	places, err := s.Places.ListByIDs(ctx, u.PlaceIDs)
	if err != nil {
		return nil, apperror.Internal("Fetching places failed, please try again later.", err)
	}
	return places, nil
}

// SearchPlaces returns places matching q in relevance order. Index entries
// whose place no longer exists are dropped.
func (s *PlaceService) SearchPlaces(ctx context.Context, q string, size int) ([]*entity.Place, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Validation("Search query is required.")
	}
	if s.Indexer == nil {
		return []*entity.Place{}, nil
	}
	ids, err := s.Indexer.Search(ctx, q, size)
	if err != nil {
		helpers.LogError(s.Logger, "place search failed", err, logrus.Fields{"q": q})
		return nil, apperror.Internal("Searching places failed, please try again later.", err)
	}
	places, err := s.Places.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("Searching places failed, please try again later.", err)
	}
	return places, nil
}

func (s *PlaceService) getPlace(ctx context.Context, placeID string) (*entity.Place, error) {
	p, err := s.Places.GetByID(ctx, placeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound(msgPlaceNotFound)
		}
		return nil, apperror.Internal("Fetching place failed, please try again later.", err)
	}
	return p, nil
}

func (s *PlaceService) index(ctx context.Context, p *entity.Place) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.Index(ctx, p); err != nil {
		helpers.LogWarn(s.Logger, "index place failed", err, logrus.Fields{"place_id": p.ID})
	}
}

func (s *PlaceService) publish(ctx context.Context, ev service.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, ev); err != nil {
		helpers.LogWarn(s.Logger, "publish event failed", err, logrus.Fields{"event": ev.Name})
	}
}

func geocodingError(err error) error {
	switch {
	case errors.Is(err, service.ErrNoResults):
		return apperror.Wrap(apperror.KindGeocodingFailed, msgNoLocation, err)
	case errors.Is(err, service.ErrIncompleteResult):
		return apperror.Wrap(apperror.KindGeocodingFailed, msgBadLocation, err)
	default:
		return apperror.Wrap(apperror.KindGeocodingFailed, msgGeocoderDown, err)
	}
}
