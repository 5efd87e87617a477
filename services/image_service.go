package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/sipstation/bubble-tea-pos-api/utils"
)

// menuImagePrefix is the key prefix for menu item images in the bucket
const menuImagePrefix = "menu"

// ImageService handles menu image upload, retrieval, and deletion
type ImageService interface {
	// UploadImage validates and uploads an image file, returns the storage key
	UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error)

	// GetImageURL generates a URL for accessing an uploaded image
	GetImageURL(ctx context.Context, imageKey string) (string, error)

	// DeleteImage removes an image from storage
	DeleteImage(ctx context.Context, imageKey string) error
}

// StoreImageService implements ImageService on top of an ObjectStore
type StoreImageService struct {
	store ObjectStore
}

// NewImageService creates an image service backed by store
func NewImageService(store ObjectStore) *StoreImageService {
	return &StoreImageService{store: store}
}

// UploadImage validates the file and stores it under menu/<uuid><ext>
func (s *StoreImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	content, err := utils.ReadUploadedFile(fileHeader)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s%s", menuImagePrefix, uuid.NewString(), utils.ImageExtension(fileHeader.Filename))
	if err := s.store.Put(ctx, key, utils.ImageContentType(fileHeader.Filename), content); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return key, nil
}

// GetImageURL generates a presigned URL for accessing an image
func (s *StoreImageService) GetImageURL(ctx context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.store.PresignGet(ctx, imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}
	return url, nil
}

// DeleteImage deletes an image from storage
func (s *StoreImageService) DeleteImage(ctx context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}

	if err := s.store.Delete(ctx, imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
