package service

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"firds/workers/exporter/internal/domain"
)

// Unpack reads every regular file from a ZIP archive held in memory.
// Entry names that would land outside the extraction directory fail the
// whole archive.
func Unpack(content []byte) ([]domain.ArchiveEntry, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	// Insecure names are reported per entry below
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, ErrOpenArchive(err)
	}

	entries := make([]domain.ArchiveEntry, 0, len(reader.File))
	for _, file := range reader.File {
		if !isSafeEntryName(file.Name) {
			return nil, ErrUnsafeEntry(file.Name)
		}
		if !file.Mode().IsRegular() {
			continue
		}

		data, err := readEntry(file)
		if err != nil {
			return nil, ErrOpenArchive(fmt.Errorf("entry %s: %w", file.Name, err))
		}
		entries = append(entries, domain.ArchiveEntry{
			Name:    path.Clean(strings.ReplaceAll(file.Name, `\`, "/")),
			Content: data,
		})
	}

	return entries, nil
}

func readEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

func isSafeEntryName(name string) bool {
	name = strings.ReplaceAll(name, `\`, "/")
	if name == "" || path.IsAbs(name) || strings.Contains(name, ":") {
		return false
	}
	cleaned := path.Clean(name)
	return cleaned != ".." && !strings.HasPrefix(cleaned, "../")
}

// SelectEntry picks the document to extract. A configured name must be
// present. Without one, the located file name with a .xml extension is
// tried, then the only .xml entry of the archive.
func SelectEntry(entries []domain.ArchiveEntry, configuredName, fileName string) (domain.ArchiveEntry, error) {
	if configuredName != "" {
		if entry, ok := findEntry(entries, configuredName); ok {
			return entry, nil
		}
		return domain.ArchiveEntry{}, ErrMissingEntry(configuredName)
	}

	var derived string
	if fileName != "" {
		derived = strings.TrimSuffix(path.Base(fileName), path.Ext(fileName)) + ".xml"
		if entry, ok := findEntry(entries, derived); ok {
			return entry, nil
		}
	}

	var xmlEntries []domain.ArchiveEntry
	for _, entry := range entries {
		if strings.EqualFold(path.Ext(entry.Name), ".xml") {
			xmlEntries = append(xmlEntries, entry)
		}
	}
	if len(xmlEntries) == 1 {
		return xmlEntries[0], nil
	}

	if derived == "" {
		derived = "*.xml"
	}
	return domain.ArchiveEntry{}, ErrMissingEntry(derived)
}

// findEntry matches the full entry name first, then the base name
func findEntry(entries []domain.ArchiveEntry, name string) (domain.ArchiveEntry, bool) {
	for _, entry := range entries {
		if entry.Name == name {
			return entry, true
		}
	}
	for _, entry := range entries {
		if path.Base(entry.Name) == name {
			return entry, true
		}
	}
	return domain.ArchiveEntry{}, false
}

// DecodeText returns content as UTF-8 text without a leading byte order mark
func DecodeText(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", domain.NewDomainError(domain.ErrInvalidEncoding.Code, domain.ErrInvalidEncoding.Message, nil, false)
	}
	return strings.TrimPrefix(string(content), "\ufeff"), nil
}
