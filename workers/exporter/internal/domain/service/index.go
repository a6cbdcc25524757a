package service

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"firds/shared/config"
	"firds/workers/exporter/internal/domain"
)

// QueryURL builds the search request for the configured publication window
func QueryURL(cfg config.SourceConfig) (string, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid source URL: %w", err)
	}

	query := u.Query()
	query.Set("q", "*")
	query.Set("fq", fmt.Sprintf("publication_date:[%sT00:00:00Z TO %sT23:59:59Z]",
		cfg.From.Format(config.DateLayout), cfg.To.Format(config.DateLayout)))
	query.Set("wt", "xml")
	query.Set("indent", "true")
	query.Set("start", strconv.Itoa(cfg.Start))
	query.Set("rows", strconv.Itoa(cfg.Rows))
	u.RawQuery = query.Encode()

	return u.String(), nil
}

type solrDoc struct {
	Fields []solrField `xml:",any"`
}

type solrField struct {
	XMLName xml.Name
	Name    string `xml:"name,attr"`
	Value   string `xml:",chardata"`
}

// ParseIndex reads the whole search response and returns every <doc> in
// document order. The full document must be well-formed.
func ParseIndex(r io.Reader) ([]domain.IndexEntry, error) {
	decoder := xml.NewDecoder(r)
	entries := []domain.IndexEntry{}
	sawRoot := false

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ErrParseIndex(err)
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if start.Name.Local != "doc" {
			continue
		}

		var doc solrDoc
		if err := decoder.DecodeElement(&doc, &start); err != nil {
			return nil, ErrParseIndex(err)
		}
		entries = append(entries, doc.entry())
	}

	if !sawRoot {
		return nil, ErrParseIndex(errors.New("document has no root element"))
	}
	return entries, nil
}

func (d solrDoc) entry() domain.IndexEntry {
	var entry domain.IndexEntry
	for _, field := range d.Fields {
		if field.XMLName.Local != "str" && field.XMLName.Local != "date" {
			continue
		}
		switch field.Name {
		case "id":
			entry.ID = field.Value
		case "file_name":
			entry.FileName = field.Value
		case "file_type":
			entry.FileType = field.Value
		case "download_link":
			entry.DownloadLink = field.Value
		case "publication_date":
			entry.PublicationDate = field.Value
		case "checksum":
			entry.Checksum = field.Value
		}
	}
	return entry
}

// LocateReference returns the first entry classified as fileType
func LocateReference(entries []domain.IndexEntry, fileType string) (domain.IndexEntry, error) {
	for _, entry := range entries {
		if entry.FileType == "" || entry.FileType != fileType {
			continue
		}
		if entry.DownloadLink == "" {
			return domain.IndexEntry{}, domain.NewDomainError(domain.ErrEmptyDownloadLink.Code,
				fmt.Sprintf("entry %q has no download link", entry.FileName), nil, false)
		}
		return entry, nil
	}

	return domain.IndexEntry{}, domain.NewDomainError(domain.ErrReferenceNotFound.Code,
		fmt.Sprintf("no %s entry among %d index entries", fileType, len(entries)), nil, false)
}
