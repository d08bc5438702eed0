package services

import (
	"context"
	"fmt"
	"io"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const verseArtFolder = "graceway/verse-art"

// ImageUploader stores an image and returns its public HTTPS URL.
type ImageUploader interface {
	Upload(ctx context.Context, r io.Reader, folder, publicID string) (string, error)
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, r io.Reader, folder, publicID string) (string, error) {
	overwrite := true
	res, err := u.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		Overwrite:    &overwrite,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

// ArtImages attaches rendered images to verse art.
type ArtImages struct {
	art      *EntityService[models.VerseArt, *models.VerseArt]
	uploader ImageUploader
	log      *zap.Logger
}

func NewArtImages(c *Catalog, uploader ImageUploader, log *zap.Logger) *ArtImages {
	return &ArtImages{art: c.VerseArt, uploader: uploader, log: log.Named("images")}
}

// Attach uploads the image under the art's id and stores its URL. Only the
// owner or staff may do this.
func (a *ArtImages) Attach(ctx context.Context, id primitive.ObjectID, r io.Reader, requester models.Actor) (*models.VerseArt, error) {
	if a.uploader == nil {
		return nil, apperr.Validation("image", "Image uploads are not configured")
	}
	art, err := a.art.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanModify(art.User) {
		return nil, apperr.Forbidden("Not authorized to update this verse art")
	}

	url, err := a.uploader.Upload(ctx, r, verseArtFolder, id.Hex())
	if err != nil {
		return nil, apperr.Internal("Image upload failed", err)
	}
	a.log.Info("image uploaded", zap.String("art", id.Hex()))

	return a.art.Apply(ctx, id, func(v *models.VerseArt) error {
		v.ImageURL = url
		return nil
	})
}
