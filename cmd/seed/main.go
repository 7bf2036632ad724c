package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"imagevault/internal/auth"
	"imagevault/internal/config"
	apperrors "imagevault/internal/errors"
	"imagevault/internal/imageproc"
	"imagevault/internal/logging"
	"imagevault/internal/service"
	"imagevault/internal/store"
)

func main() {
	if err := run(os.Stdout); err != nil {
		logrus.WithError(err).Fatal("seed failed")
	}
}

// run seeds the store and writes the demo access token to out. It returns
// instead of exiting so the store is always closed.
func run(out io.Writer) error {
	username := flag.String("username", "alice", "demo username")
	email := flag.String("email", "alice@x.com", "demo email")
	password := flag.String("password", "Pw123!", "demo password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("store init: %w", err)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logger.WithError(err).Warn("store close")
		}
	}()

	authService := service.NewAuthService(st.Users, auth.NewJWTService(cfg.JWTSecret), cfg.AccessTokenTTL, logger, nil)
	imageService := service.NewImageService(st.Images, imageproc.NewProcessor(), logger, nil)

	res, err := seedDemo(ctx, authService, imageService, logger, *username, *email, *password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, res.AccessToken)
	return err
}

type seedResult struct {
	AccessToken string
	ImageID     string // empty when demo data was already present
}

// seedDemo registers (or logs in) the demo user and uploads one sample image
// unless the user already owns images. The token is returned, never logged.
func seedDemo(
	ctx context.Context,
	authService service.AuthService,
	imageService service.ImageService,
	logger logrus.FieldLogger,
	username, email, password string,
) (*seedResult, error) {
	res, err := authService.Register(ctx, username, email, password)
	switch {
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		res, err = authService.Login(ctx, username, password)
		if err != nil {
			return nil, fmt.Errorf("demo user exists with a different password: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("register demo user: %w", err)
	}
	log := logger.WithField("username", res.User.Username)

	existing, err := imageService.List(ctx, res.User, nil)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	if len(existing) > 0 {
		log.WithField("images", len(existing)).Info("demo data already present")
		return &seedResult{AccessToken: res.AccessToken}, nil
	}

	sample, err := sampleJPEG(100, 100)
	if err != nil {
		return nil, fmt.Errorf("build sample image: %w", err)
	}
	img, err := imageService.Upload(ctx, res.User, service.UploadInput{
		Data:        sample,
		ContentType: "image/jpeg",
		Filename:    "red.jpg",
		Caption:     "test",
	})
	if err != nil {
		return nil, fmt.Errorf("upload sample image: %w", err)
	}

	log.WithField("image_id", img.ID).Info("seed completed")
	return &seedResult{AccessToken: res.AccessToken, ImageID: img.ID}, nil
}

func sampleJPEG(w, h int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 255, A: 255}}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
