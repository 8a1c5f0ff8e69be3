// Package container builds the application's object graph from config.
package container

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/places-api/config"
	"github.com/oksasatya/places-api/internal/application"
	repo "github.com/oksasatya/places-api/internal/domain/repository"
	"github.com/oksasatya/places-api/internal/domain/service"
	"github.com/oksasatya/places-api/internal/infrastructure/events"
	"github.com/oksasatya/places-api/internal/infrastructure/geocoding"
	"github.com/oksasatya/places-api/internal/infrastructure/imagestore"
	"github.com/oksasatya/places-api/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/places-api/internal/infrastructure/postgres"
	"github.com/oksasatya/places-api/internal/infrastructure/search"
	"github.com/oksasatya/places-api/pkg/helpers"
)

// Container holds every long-lived component. Optional backends are nil
// when not configured.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	PGPool    *pgxpool.Pool
	Redis     *redis.Client
	GCS       *storage.Client
	ES        *elasticsearch.Client
	RabbitPub *helpers.RabbitPublisher
	JWT       *helpers.JWTManager

	Users  repo.UserRepository
	Places repo.PlaceRepository
	UoW    repo.UnitOfWork

	Images   service.ImageStore
	Geocoder service.Geocoder
	Indexer  service.PlaceIndexer
	Events   service.EventPublisher

	UserService  *application.UserService
	PlaceService *application.PlaceService

	closers []func()
}

// New connects to the configured backends and wires the services.
// On error everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}
	if err := c.init(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) init(ctx context.Context) error {
	cfg := c.Config
	jwt, err := helpers.NewJWTManager(cfg.JWTKey, cfg.JWTTTL)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	c.JWT = jwt

	if err := c.initStorage(ctx); err != nil {
		return err
	}
	c.initRedis(ctx)
	if err := c.initImages(ctx); err != nil {
		return err
	}
	c.initSearch(ctx)
	c.initEvents()

	c.Geocoder = geocoding.NewCachedGeocoder(
		geocoding.NewNominatim(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout),
		c.Redis, cfg.GeocodeCacheTTL, c.Logger,
	)

	notify := application.Notify{AppName: cfg.AppName, SupportURL: cfg.SupportURL, FrontendURL: cfg.FrontendURL}

	c.UserService = application.NewUserService(c.Users, c.JWT, c.Events, c.Logger, cfg.BcryptCost, cfg.DefaultImage)
	c.UserService.Notify = notify

	c.PlaceService = application.NewPlaceService(c.Users, c.Places, c.UoW, c.Geocoder, c.Images, c.Indexer, c.Events, c.Logger, cfg.DefaultImage)
	c.PlaceService.Notify = notify
	return nil
}

func (c *Container) initStorage(ctx context.Context) error {
	if c.Config.StorageDriver == "memory" {
		st := memory.NewStore()
		c.Users, c.Places, c.UoW = st.Users(), st.Places(), st
		helpers.LogInfo(c.Logger, "using in-memory storage", nil)
		return nil
	}

	pool, err := pginfra.NewPool(ctx, c.Config.PostgresDSN(), c.Config.DBMaxConns, c.Config.DBMinConns, c.Config.DBMaxConnLife)
	if err != nil {
		return err
	}
	c.PGPool = pool
	c.closers = append(c.closers, pool.Close)
	c.Users = pginfra.NewUserRepository(pool)
	c.Places = pginfra.NewPlaceRepository(pool)
	c.UoW = pginfra.NewUnitOfWork(pool)
	return nil
}

// initRedis leaves Redis nil when unset or unreachable; rate limiting and
// the geocode cache are then skipped.
func (c *Container) initRedis(ctx context.Context) {
	if c.Config.RedisAddr == "" {
		return
	}
	rdb := helpers.NewRedisClient(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
	if err := helpers.PingRedis(ctx, rdb); err != nil {
		helpers.LogWarn(c.Logger, "redis unavailable, continuing without it", err, logrus.Fields{"addr": c.Config.RedisAddr})
		_ = rdb.Close()
		return
	}
	c.Redis = rdb
	c.closers = append(c.closers, func() { _ = rdb.Close() })
}

func (c *Container) initImages(ctx context.Context) error {
	cfg := c.Config
	switch cfg.ImageStorage {
	case "gcs":
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return fmt.Errorf("gcs client: %w", err)
		}
		c.GCS = client
		c.closers = append(c.closers, func() { _ = client.Close() })
		c.Images = imagestore.NewGCS(client, cfg.GCSBucket)
	case "minio":
		client, err := helpers.NewMinioClient(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
		if err != nil {
			return fmt.Errorf("minio client: %w", err)
		}
		store, err := imagestore.NewMinIO(ctx, client, cfg.MinioBucket)
		if err != nil {
			return err
		}
		c.Images = store
	default:
		store, err := imagestore.NewLocal(cfg.UploadDir)
		if err != nil {
			return err
		}
		c.Images = store
	}
	return nil
}

func (c *Container) initSearch(ctx context.Context) {
	es, err := helpers.NewESClient(c.Config.ESAddrs(), c.Config.ElasticsearchUser, c.Config.ElasticsearchPass)
	if err != nil {
		helpers.LogWarn(c.Logger, "elasticsearch client init failed, search disabled", err, nil)
	}
	c.ES = es
	c.Indexer = search.NewPlaceIndexer(c.ES, c.Config.ESPlacesIndex)

	ix, ok := c.Indexer.(*search.PlaceIndexer)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := ix.EnsureIndex(ctx); err != nil {
		helpers.LogWarn(c.Logger, "ensure places index failed", err, logrus.Fields{"index": ix.IndexName})
	}
}

func (c *Container) initEvents() {
	c.Events = events.Noop{}
	if c.Config.RabbitMQURL == "" {
		return
	}
	pub, err := helpers.NewRabbitPublisher(c.Config.RabbitMQURL, c.Config.RabbitMQEventsQueue)
	if err != nil {
		helpers.LogWarn(c.Logger, "rabbitmq unavailable, emails disabled", err, nil)
		return
	}
	c.RabbitPub = pub
	c.closers = append(c.closers, pub.Close)
	c.Events = events.NewEmailPublisher(pub)
}

// Close releases connections in reverse order of opening.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
