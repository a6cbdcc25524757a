package service

import (
	"encoding/xml"
	"errors"
	"io"

	"firds/shared/config"
	"firds/workers/exporter/internal/domain"
)

// Child element names read from each instrument
const (
	fieldID                 = "Id"
	fieldFullName           = "FullNm"
	fieldClassificationType = "ClssfctnTp"
	fieldCommodityDerivInd  = "CmmdtyDerivInd"
	fieldNotionalCurrency   = "NtnlCcy"
	fieldIssuer             = "Issr"
)

var requiredFields = []string{
	fieldID,
	fieldFullName,
	fieldClassificationType,
	fieldCommodityDerivInd,
	fieldNotionalCurrency,
}

// Extractor reads instrument attributes from an ISO 20022 document
type Extractor struct {
	namespace     string
	element       string
	missingIssuer string
}

func NewExtractor(cfg config.ExtractConfig) *Extractor {
	return &Extractor{
		namespace:     cfg.Namespace,
		element:       cfg.Element,
		missingIssuer: cfg.MissingIssuer,
	}
}

// Extract returns one record per matching element in document order. On
// any failure it returns an empty slice with the error.
func (e *Extractor) Extract(r io.Reader) ([]domain.InstrumentRecord, error) {
	decoder := xml.NewDecoder(r)
	records := []domain.InstrumentRecord{}

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return []domain.InstrumentRecord{}, ErrParseDocument(err)
		}

		start, ok := token.(xml.StartElement)
		if !ok || !e.matches(start.Name) {
			continue
		}

		fields, err := e.readChildren(decoder)
		if err != nil {
			return []domain.InstrumentRecord{}, ErrParseDocument(err)
		}

		record, err := e.toRecord(fields, len(records)+1)
		if err != nil {
			return []domain.InstrumentRecord{}, err
		}
		records = append(records, record)
	}

	return records, nil
}

func (e *Extractor) matches(name xml.Name) bool {
	return name.Local == e.element && (e.namespace == "" || name.Space == e.namespace)
}

// readChildren collects the text of the direct children of the current
// element, keeping the first occurrence of each name
func (e *Extractor) readChildren(decoder *xml.Decoder) (map[string]string, error) {
	fields := make(map[string]string)

	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			// chardata joins every direct text run of the child, including
			// text after a nested element or comment. auth.036 fields are leaves.
			var child struct {
				Text string `xml:",chardata"`
			}
			if err := decoder.DecodeElement(&child, &t); err != nil {
				return nil, err
			}
			if e.namespace != "" && t.Name.Space != e.namespace {
				continue
			}
			if _, seen := fields[t.Name.Local]; !seen {
				fields[t.Name.Local] = child.Text
			}
		case xml.EndElement:
			return fields, nil
		}
	}
}

func (e *Extractor) toRecord(fields map[string]string, ordinal int) (domain.InstrumentRecord, error) {
	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			return domain.InstrumentRecord{}, ErrRequiredField(name, ordinal)
		}
	}

	issuer, ok := fields[fieldIssuer]
	if !ok {
		issuer = e.missingIssuer
	}

	return domain.InstrumentRecord{
		ID:                           fields[fieldID],
		FullName:                     fields[fieldFullName],
		ClassificationType:           fields[fieldClassificationType],
		CommodityDerivativeIndicator: fields[fieldCommodityDerivInd],
		NotionalCurrency:             fields[fieldNotionalCurrency],
		Issuer:                       issuer,
	}, nil
}
