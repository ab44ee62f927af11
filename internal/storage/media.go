package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"time"

	"github.com/chai2010/webp"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// MediaClass separates images from videos for size limits.
type MediaClass string

const (
	ClassImage MediaClass = "image"
	ClassVideo MediaClass = "video"
)

// ProfileSlot is a user image slot that gets normalised before storage.
type ProfileSlot string

const (
	SlotAvatar ProfileSlot = "avatar"
	SlotBanner ProfileSlot = "banner"
)

// Bounds returns the box a slot image is scaled to fit.
func (s ProfileSlot) Bounds() (int, int) {
	if s == SlotBanner {
		return 1500, 500
	}
	return 512, 512
}

const webpQuality = 80

// ErrUnsupportedMedia is returned for bytes that are not an accepted format.
var ErrUnsupportedMedia = errors.New("unsupported media type")

var allowedMedia = map[string]MediaClass{
	"jpg":  ClassImage,
	"png":  ClassImage,
	"gif":  ClassImage,
	"webp": ClassImage,
	"mp4":  ClassVideo,
	"webm": ClassVideo,
	"mov":  ClassVideo,
}

// Detected is the sniffed type of an upload.
type Detected struct {
	Class MediaClass
	Ext   string
	MIME  string
}

// Detect sniffs body. The client supplied content type is never trusted.
func Detect(body []byte) (Detected, error) {
	kind, err := filetype.Match(body)
	if err != nil || kind == types.Unknown {
		return Detected{}, ErrUnsupportedMedia
	}
	class, ok := allowedMedia[kind.Extension]
	if !ok {
		return Detected{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, kind.Extension)
	}
	return Detected{Class: class, Ext: kind.Extension, MIME: kind.MIME.Value}, nil
}

// PostMediaKey is the object key for a post attachment.
func PostMediaKey(userID, ext string, now time.Time) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("posts/%s/post-%d-%s.%s", userID, now.UnixMilli(), id, ext), nil
}

// ProfileImageKey is the object key for an avatar or banner.
func ProfileImageKey(userID string, slot ProfileSlot, now time.Time) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("users/%s/%s-%d-%s.webp", userID, slot, now.UnixMilli(), id), nil
}

// NormalizeProfileImage decodes an image, scales it to fit the slot and
// re-encodes it as WebP.
func NormalizeProfileImage(body []byte, slot ProfileSlot) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMedia, err)
	}
	maxW, maxH := slot.Bounds()
	resized := resizeToFit(src, maxW, maxH)

	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, resized, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
