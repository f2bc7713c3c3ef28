package course

import (
	"CourseHub/pkg/logger"
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

type presigner interface {
	PresignedURL(ctx context.Context, objectKey string) (string, error)
}

// ImageURLs hands out presigned cover image URLs. The cache ttl must be
// shorter than the presign lifetime or cached URLs go stale.
type ImageURLs struct {
	log    logger.Log
	signer presigner
	cache  *cache.Cache
}

// NewImageURLs returns nil when signer is nil; a nil *ImageURLs resolves
// every key to "".
func NewImageURLs(l logger.Log, signer presigner, ttl time.Duration) *ImageURLs {
	if signer == nil {
		return nil
	}
	return &ImageURLs{
		log:    l,
		signer: signer,
		cache:  cache.New(ttl, 2*ttl),
	}
}

func (u *ImageURLs) URL(ctx context.Context, objectKey string) string {
	if u == nil || objectKey == "" {
		return ""
	}
	if cached, ok := u.cache.Get(objectKey); ok {
		return cached.(string)
	}
	url, err := u.signer.PresignedURL(ctx, objectKey)
	if err != nil {
		u.log.ErrorErr("failed to presign course image", err, "object_key", objectKey)
		return ""
	}
	u.cache.SetDefault(objectKey, url)
	return url
}

func (u *ImageURLs) Forget(objectKey string) {
	if u == nil {
		return
	}
	u.cache.Delete(objectKey)
}
