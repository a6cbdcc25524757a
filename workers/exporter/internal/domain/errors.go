package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code      string
	Message   string
	Err       error
	Retryable bool
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code, so errors.Is works
// against the sentinels below
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error, retryable bool) *DomainError {
	return &DomainError{
		Code:      code,
		Message:   message,
		Err:       err,
		Retryable: retryable,
	}
}

// Common domain errors
var (
	ErrDownloadFailed = &DomainError{
		Code:      "DOWNLOAD_FAILED",
		Message:   "Failed to download file",
		Retryable: true,
	}

	ErrMalformedIndex = &DomainError{
		Code:      "MALFORMED_INDEX",
		Message:   "The file index is not well-formed XML",
		Retryable: false,
	}

	ErrReferenceNotFound = &DomainError{
		Code:      "REFERENCE_NOT_FOUND",
		Message:   "No index entry has the requested file type",
		Retryable: false,
	}

	ErrEmptyDownloadLink = &DomainError{
		Code:      "EMPTY_DOWNLOAD_LINK",
		Message:   "The located index entry has no download link",
		Retryable: false,
	}

	ErrInvalidArchive = &DomainError{
		Code:      "INVALID_ARCHIVE",
		Message:   "The downloaded file is not a readable ZIP archive",
		Retryable: false,
	}

	ErrUnsafeEntryName = &DomainError{
		Code:      "UNSAFE_ENTRY_NAME",
		Message:   "Archive entry name escapes the extraction directory",
		Retryable: false,
	}

	ErrEntryNotFound = &DomainError{
		Code:      "ENTRY_NOT_FOUND",
		Message:   "The expected document is not in the archive",
		Retryable: false,
	}

	ErrInvalidEncoding = &DomainError{
		Code:      "INVALID_ENCODING",
		Message:   "The document is not valid UTF-8",
		Retryable: false,
	}

	ErrMalformedDocument = &DomainError{
		Code:      "MALFORMED_DOCUMENT",
		Message:   "The instrument document is not well-formed XML",
		Retryable: false,
	}

	ErrMissingField = &DomainError{
		Code:      "MISSING_FIELD",
		Message:   "A required instrument field is missing",
		Retryable: false,
	}

	ErrStorageFailed = &DomainError{
		Code:      "STORAGE_FAILED",
		Message:   "Failed to store file",
		Retryable: true,
	}
)
