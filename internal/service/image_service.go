package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "imagevault/internal/errors"
	"imagevault/internal/imageproc"
	"imagevault/internal/logging"
	"imagevault/internal/metrics"
	"imagevault/internal/model"
	"imagevault/internal/repository"
)

// ImageProcessor normalizes raw upload bytes. *imageproc.Processor satisfies it.
type ImageProcessor interface {
	Process(data []byte, contentType string) (*imageproc.Processed, error)
}

// UploadInput carries one multipart upload.
type UploadInput struct {
	Data        []byte
	ContentType string
	Filename    string
	Caption     string
	IsPrivate   bool
}

// ImageService handles owner-scoped image operations. The owner is always
// the authenticated user passed in.
type ImageService interface {
	Upload(ctx context.Context, owner *model.User, in UploadInput) (*model.Image, error)
	List(ctx context.Context, owner *model.User, isPrivate *bool) ([]model.Image, error)
	Delete(ctx context.Context, owner *model.User, id string) error
}

type imageService struct {
	imageRepo repository.ImageRepository
	processor ImageProcessor
	logger    logrus.FieldLogger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewImageService creates a new image service.
func NewImageService(
	imageRepo repository.ImageRepository,
	processor ImageProcessor,
	logger logrus.FieldLogger,
	m *metrics.Metrics,
) ImageService {
	return &imageService{
		imageRepo: imageRepo,
		processor: processor,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Upload normalizes and stores an image. Nothing is stored if processing fails.
func (s *imageService) Upload(ctx context.Context, owner *model.User, in UploadInput) (*model.Image, error) {
	start := time.Now()
	processed, err := s.processor.Process(in.Data, in.ContentType)
	s.metrics.ObserveProcessing(time.Since(start))
	if err != nil {
		if isRejection(err) {
			s.metrics.Upload(metrics.ResultRejected)
			logging.WithUser(s.logger, owner.Username).WithError(err).
				WithField("content_type", in.ContentType).Info("upload rejected")
		} else {
			s.metrics.Upload(metrics.ResultError)
		}
		return nil, err
	}

	image := &model.Image{
		ID:          uuid.NewString(),
		UserID:      owner.ID,
		Filename:    in.Filename,
		Caption:     in.Caption,
		IsPrivate:   in.IsPrivate,
		ImageData:   processed.Data,
		ContentType: in.ContentType,
		FileSize:    processed.Size,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.imageRepo.Create(ctx, image); err != nil {
		s.metrics.Upload(metrics.ResultError)
		return nil, fmt.Errorf("store image: %w", err)
	}

	s.metrics.Upload(metrics.ResultSuccess)
	logging.WithUser(s.logger, owner.Username).WithFields(logrus.Fields{
		"image_id":  image.ID,
		"file_size": image.FileSize,
		"width":     processed.Width,
		"height":    processed.Height,
	}).Info("image uploaded")
	return image, nil
}

func (s *imageService) List(ctx context.Context, owner *model.User, isPrivate *bool) ([]model.Image, error) {
	images, err := s.imageRepo.ListByOwner(ctx, owner.ID, isPrivate)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	if images == nil {
		images = []model.Image{}
	}
	return images, nil
}

// Delete removes the owner's image. Another user's image reads as not found.
func (s *imageService) Delete(ctx context.Context, owner *model.User, id string) error {
	n, err := s.imageRepo.DeleteByIDAndOwner(ctx, id, owner.ID)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if n == 0 {
		return apperrors.ErrImageNotFound
	}
	logging.WithUser(s.logger, owner.Username).WithField("image_id", id).Info("image deleted")
	return nil
}

func isRejection(err error) bool {
	return errors.Is(err, apperrors.ErrInvalidFileType) ||
		errors.Is(err, apperrors.ErrFileTooLarge) ||
		errors.Is(err, apperrors.ErrInvalidImageFile)
}
