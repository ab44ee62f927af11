package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pulse/internal/config"
	"pulse/internal/featureflags"
	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/repository"
	"pulse/internal/storage"
)

// Upload kinds accepted by MediaService.
const (
	MediaKindPost   = "post"
	MediaKindAvatar = "avatar"
	MediaKindBanner = "banner"
)

// MediaService validates uploads and writes them to object storage.
type MediaService struct {
	store         storage.Store
	userRepo      repository.UserRepository
	flags         *featureflags.Manager
	maxImageBytes int64
	maxVideoBytes int64
	now           func() time.Time
	log           *observability.ServiceLogger
}

type UploadMediaInput struct {
	UserID string
	Kind   string
	Body   []byte
}

// MediaUpload describes a stored object.
type MediaUpload struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
	MIME string `json:"mime"`
}

func NewMediaService(
	store storage.Store,
	userRepo repository.UserRepository,
	flags *featureflags.Manager,
	cfg *config.Config,
) *MediaService {
	return &MediaService{
		store:         store,
		userRepo:      userRepo,
		flags:         flags,
		maxImageBytes: cfg.MaxImageBytes(),
		maxVideoBytes: cfg.MaxVideoBytes(),
		now:           time.Now,
		log:           observability.NewServiceLogger("media"),
	}
}

// Upload stores a post attachment or replaces the caller's avatar or banner.
func (s *MediaService) Upload(ctx context.Context, in UploadMediaInput) (*MediaUpload, error) {
	if len(in.Body) == 0 {
		return nil, models.NewValidationError("file is required")
	}
	detected, err := storage.Detect(in.Body)
	if err != nil {
		return nil, models.NewValidationError("Unsupported file type")
	}

	switch in.Kind {
	case MediaKindPost, "":
		return s.uploadPostMedia(ctx, in, detected)
	case MediaKindAvatar:
		return s.uploadProfileImage(ctx, in, detected, storage.SlotAvatar)
	case MediaKindBanner:
		return s.uploadProfileImage(ctx, in, detected, storage.SlotBanner)
	default:
		return nil, models.NewValidationError("kind must be post, avatar or banner")
	}
}

func (s *MediaService) uploadPostMedia(ctx context.Context, in UploadMediaInput, detected storage.Detected) (*MediaUpload, error) {
	if detected.Class == storage.ClassVideo && !s.flags.Enabled(featureflags.VideoUploads, in.UserID) {
		return nil, models.NewValidationError("Video uploads are not enabled")
	}
	if err := s.checkSize(detected.Class, len(in.Body)); err != nil {
		return nil, err
	}

	key, err := storage.PostMediaKey(in.UserID, detected.Ext, s.now())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	url, err := s.store.Upload(ctx, key, in.Body, detected.MIME)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &MediaUpload{URL: url, Kind: MediaKindPost, MIME: detected.MIME}, nil
}

func (s *MediaService) uploadProfileImage(ctx context.Context, in UploadMediaInput, detected storage.Detected, slot storage.ProfileSlot) (*MediaUpload, error) {
	if detected.Class != storage.ClassImage {
		return nil, models.NewValidationError("Profile images must be jpeg, png, gif or webp")
	}
	if err := s.checkSize(detected.Class, len(in.Body)); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	body, err := storage.NormalizeProfileImage(in.Body, slot)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedMedia) {
			return nil, models.NewValidationError("Image could not be decoded")
		}
		return nil, models.NewInternalError(err)
	}
	key, err := storage.ProfileImageKey(in.UserID, slot, s.now())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	url, err := s.store.Upload(ctx, key, body, "image/webp")
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	column, previous := "image", user.Image
	if slot == storage.SlotBanner {
		column, previous = "banner_image", user.BannerImage
	}
	if err := s.userRepo.Update(ctx, in.UserID, map[string]interface{}{column: url}); err != nil {
		return nil, err
	}

	if oldKey, ok := s.store.KeyFromURL(previous); ok && strings.HasPrefix(oldKey, "users/"+in.UserID+"/") {
		if err := s.store.Delete(ctx, oldKey); err != nil {
			s.log.LogDegraded(ctx, err, "delete_previous_profile_image", slog.String("key", oldKey))
		}
	}
	return &MediaUpload{URL: url, Kind: string(slot), MIME: "image/webp"}, nil
}

func (s *MediaService) checkSize(class storage.MediaClass, size int) error {
	limit := s.maxImageBytes
	if class == storage.ClassVideo {
		limit = s.maxVideoBytes
	}
	if int64(size) > limit {
		return models.NewTooLargeError(fmt.Sprintf("File too large (max %d MB)", limit>>20))
	}
	return nil
}
