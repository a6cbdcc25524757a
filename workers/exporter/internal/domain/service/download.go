package service

import (
	"context"
	"errors"

	"firds/workers/exporter/internal/domain"
)

type DownloadService struct {
	httpClient  domain.HTTPClient
	maxFileSize int64
}

func NewDownloadService(httpClient domain.HTTPClient, maxFileSize int64) *DownloadService {
	return &DownloadService{
		httpClient:  httpClient,
		maxFileSize: maxFileSize,
	}
}

// Fetch downloads url into memory
func (s *DownloadService) Fetch(ctx context.Context, url string) (*domain.Payload, error) {
	body, headers, err := s.httpClient.Download(ctx, url, nil)
	if err != nil {
		return nil, ErrHTTPRequest(err)
	}
	defer body.Close()

	result, err := domain.NewPayloadFromReader(body, url, headers["Content-Type"], s.maxFileSize)
	if err != nil {
		if errors.Is(err, domain.ErrSizeExceeded) {
			return nil, ErrFileTooLarge
		}
		return nil, ErrReadResponse(err)
	}

	return result, nil
}
