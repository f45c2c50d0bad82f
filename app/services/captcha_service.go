package services

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/wenlng/go-captcha/v2/rotate"
)

const captchaKeyPrefix = "captcha:"

// CaptchaService guards the admin login with a rotate captcha.
//
// Generate returns a challenge id and two base64 images. The client rotates the
// thumb until it lines up and sends back the angle. Challenges are single use.
type CaptchaService interface {
	GenerateRotate(ctx context.Context) (*RotateChallenge, error)
	VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool
}

type RotateChallenge struct {
	ID                string
	MasterImageBase64 string
	ThumbImageBase64  string
}

type captchaServiceImpl struct {
	rotator rotate.Captcha
	store   KeyValueStore
	ttl     time.Duration
	padding int // tolerance for angle validation
}

// NewCaptchaServiceRotate constructs a CaptchaService using rotate mode.
// A nil store keeps challenges in process memory.
func NewCaptchaServiceRotate(store KeyValueStore, ttl time.Duration, padding int, imgSizePx int) (CaptchaService, error) {
	if imgSizePx <= 0 {
		imgSizePx = 220
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if store == nil {
		store = NewMemoryStore()
	}

	builder := rotate.NewBuilder(
		rotate.WithImageSquareSize(imgSizePx),
	)
	builder.SetResources(
		rotate.WithImages(generateRotateBackgrounds(3, imgSizePx)),
	)

	return &captchaServiceImpl{
		rotator: builder.Make(),
		store:   store,
		ttl:     ttl,
		padding: padding,
	}, nil
}

func (s *captchaServiceImpl) GenerateRotate(ctx context.Context) (*RotateChallenge, error) {
	captData, err := s.rotator.Generate()
	if err != nil {
		return nil, err
	}

	block := captData.GetData()
	if block == nil {
		return nil, errors.New("captcha: empty challenge data")
	}

	masterB64, err := captData.GetMasterImage().ToBase64()
	if err != nil {
		return nil, err
	}
	thumbB64, err := captData.GetThumbImage().ToBase64()
	if err != nil {
		return nil, err
	}

	challengeID := uuid.New().String()
	if err := s.store.Set(ctx, captchaKeyPrefix+challengeID, strconv.Itoa(block.Angle), s.ttl); err != nil {
		return nil, err
	}

	return &RotateChallenge{
		ID:                challengeID,
		MasterImageBase64: masterB64,
		ThumbImageBase64:  thumbB64,
	}, nil
}

func (s *captchaServiceImpl) VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool {
	key := captchaKeyPrefix + challengeID
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		return false
	}
	// consume on success or failure
	_ = s.store.Delete(ctx, key)

	target, err := strconv.Atoi(raw)
	if err != nil {
		return false
	}

	return rotate.Validate(int(math.Round(userAngle)), target, s.padding)
}

func generateRotateBackgrounds(n int, size int) []image.Image {
	if n <= 0 {
		n = 1
	}
	imgs := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		imgs = append(imgs, newNoiseGradientImage(size, size))
	}
	return imgs
}

// newNoiseGradientImage paints a green radial gradient with a little noise
func newNoiseGradientImage(w, h int) image.Image {
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x - w/2)
			dy := float64(y - h/2)
			t := math.Min(math.Sqrt(dx*dx+dy*dy)/float64(w/2), 1)
			base := uint8(210 - int(140*t))
			noise := uint8(rand.Intn(24))
			rgba.Set(x, y, color.RGBA{R: base / 3, G: base + noise/2, B: base/2 + noise, A: 255})
		}
	}
	stripe := image.Rect(0, h/2-h/16, w, h/2+h/16)
	draw.Draw(rgba, stripe, &image.Uniform{C: color.RGBA{R: 255, G: 255, B: 255, A: 40}}, image.Point{}, draw.Over)
	return rgba
}
