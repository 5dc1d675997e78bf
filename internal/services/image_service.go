package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// ProcessedImage is the output of the download pipeline for one photo
type ProcessedImage struct {
	Image     []byte
	Thumbnail []byte
	TakenAt   *time.Time
}

// ImageService validates downloaded bytes and derives the stored
// artifacts: the original image, a small JPEG thumbnail for the gallery
// grid, and the EXIF capture time when the file carries one.
type ImageService struct {
	thumbMaxDim  int
	thumbQuality int
}

// NewImageService creates an ImageService. maxDim bounds the longer
// thumbnail edge.
func NewImageService(maxDim int) *ImageService {
	if maxDim <= 0 {
		maxDim = 200
	}
	return &ImageService{
		thumbMaxDim:  maxDim,
		thumbQuality: 80,
	}
}

// Process validates and derives artifacts from downloaded image bytes.
// An undecodable body is an error (the download is treated as failed);
// thumbnail or EXIF trouble is not, the full-size bytes still land.
func (s *ImageService) Process(data []byte) (*ProcessedImage, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode downloaded image: %w", err)
	}

	result := &ProcessedImage{Image: data}

	thumb := imaging.Fit(img, s.thumbMaxDim, s.thumbMaxDim, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(s.thumbQuality)); err == nil {
		result.Thumbnail = buf.Bytes()
	}

	result.TakenAt = extractTakenAt(data)

	return result, nil
}

// extractTakenAt pulls the EXIF capture time. Flickr's static hosts
// usually strip EXIF, so a miss is the common case.
func extractTakenAt(data []byte) *time.Time {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	taken, err := x.DateTime()
	if err != nil {
		return nil
	}
	utc := taken.UTC()
	return &utc
}
