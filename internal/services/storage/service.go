package storage

import (
	"errors"
	"time"

	"github.com/phambaophuc/image-export/internal/config"
	"github.com/redis/go-redis/v9"
	storage_go "github.com/supabase-community/storage-go"
)

var ErrRemoteStorageDisabled = errors.New("remote storage is not configured")

// StorageService keeps preview cache entries and export job records in Redis
// and mirrors exported files to a Supabase bucket when one is configured.
type StorageService struct {
	sbClient      *storage_go.Client
	redisClient   *redis.Client
	bucket        string
	cacheDuration time.Duration
	jobTTL        time.Duration
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return newStorageService(cfg, redisClient), nil
}

func newStorageService(cfg *config.Config, redisClient *redis.Client) *StorageService {
	var sbClient *storage_go.Client
	if cfg.Supabase.Enabled() {
		sbClient = storage_go.NewClient(cfg.Supabase.URL+"/storage/v1", cfg.Supabase.KEY, nil)
	}

	return &StorageService{
		sbClient:      sbClient,
		redisClient:   redisClient,
		bucket:        cfg.Supabase.BUCKET,
		cacheDuration: cfg.Export.PreviewCacheTTL,
		jobTTL:        cfg.Export.JobResultTTL,
	}
}

// RemoteEnabled reports whether exported files can be mirrored to the bucket.
func (s *StorageService) RemoteEnabled() bool {
	return s.sbClient != nil
}

func (s *StorageService) Close() error {
	return s.redisClient.Close()
}
