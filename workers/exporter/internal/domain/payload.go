package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrEmptyContent = errors.New("download content cannot be empty")
	ErrEmptyURL     = errors.New("download URL cannot be empty")
	ErrSizeExceeded = errors.New("content size exceeds maximum")
)

// Payload is a downloaded body together with where it came from
type Payload struct {
	content     []byte
	contentType string
	url         string
}

// NewPayload creates a valid Payload with validation
func NewPayload(content []byte, url string, contentType string) (*Payload, error) {
	if len(content) == 0 {
		return nil, ErrEmptyContent
	}

	if url == "" {
		return nil, ErrEmptyURL
	}

	return &Payload{
		content:     content,
		url:         url,
		contentType: normalizeContentType(contentType),
	}, nil
}

// NewPayloadFromReader reads at most maxSize bytes into a Payload
func NewPayloadFromReader(reader io.Reader, url string, contentType string, maxSize int64) (*Payload, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}

	// One extra byte tells us the limit was crossed
	content, err := io.ReadAll(io.LimitReader(reader, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	if int64(len(content)) > maxSize {
		return nil, fmt.Errorf("%w %d", ErrSizeExceeded, maxSize)
	}

	return NewPayload(content, url, contentType)
}

// Content returns a copy of the downloaded bytes
func (p *Payload) Content() []byte {
	result := make([]byte, len(p.content))
	copy(result, p.content)
	return result
}

// Hash returns the hex SHA-256 of the content
func (p *Payload) Hash() string {
	hash := sha256.Sum256(p.content)
	return hex.EncodeToString(hash[:])
}

func (p *Payload) Size() int64 {
	return int64(len(p.content))
}

// ContentType returns the normalized content type
func (p *Payload) ContentType() string {
	return p.contentType
}

func (p *Payload) URL() string {
	return p.url
}

func normalizeContentType(contentType string) string {
	// Remove charset and other parameters
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(strings.ToLower(contentType))
}
