package service

import (
	"errors"
	"fmt"

	"firds/workers/exporter/internal/domain"
)

var (
	ErrFileTooLarge = errors.New("file exceeds maximum size")
)

// Error wrapping functions with context
func ErrHTTPRequest(err error) error {
	return domain.NewDomainError(domain.ErrDownloadFailed.Code, "HTTP request failed", err, true)
}

func ErrReadResponse(err error) error {
	return fmt.Errorf("failed to read response: %w", err)
}

func ErrParseIndex(err error) error {
	return domain.NewDomainError(domain.ErrMalformedIndex.Code, domain.ErrMalformedIndex.Message, err, false)
}

func ErrOpenArchive(err error) error {
	return domain.NewDomainError(domain.ErrInvalidArchive.Code, domain.ErrInvalidArchive.Message, err, false)
}

func ErrUnsafeEntry(name string) error {
	return domain.NewDomainError(domain.ErrUnsafeEntryName.Code, fmt.Sprintf("unsafe archive entry name %q", name), nil, false)
}

func ErrMissingEntry(name string) error {
	return domain.NewDomainError(domain.ErrEntryNotFound.Code, fmt.Sprintf("archive entry %q not found", name), nil, false)
}

func ErrParseDocument(err error) error {
	return domain.NewDomainError(domain.ErrMalformedDocument.Code, domain.ErrMalformedDocument.Message, err, false)
}

func ErrRequiredField(field string, ordinal int) error {
	return domain.NewDomainError(domain.ErrMissingField.Code,
		fmt.Sprintf("field %s missing in element %d", field, ordinal), nil, false)
}
