package domain

// IndexEntry is one file reference listed by the FIRDS search index
type IndexEntry struct {
	ID              string `json:"id,omitempty"`
	FileName        string `json:"file_name,omitempty"`
	FileType        string `json:"file_type,omitempty"`
	DownloadLink    string `json:"download_link,omitempty"`
	PublicationDate string `json:"publication_date,omitempty"`
	Checksum        string `json:"checksum,omitempty"`
}

// InstrumentRecord holds the exported attributes of one instrument
type InstrumentRecord struct {
	ID                           string
	FullName                     string
	ClassificationType           string
	CommodityDerivativeIndicator string
	NotionalCurrency             string
	Issuer                       string
}

// Row returns the record fields in output column order
func (r InstrumentRecord) Row() []string {
	return []string{
		r.ID,
		r.FullName,
		r.ClassificationType,
		r.CommodityDerivativeIndicator,
		r.NotionalCurrency,
		r.Issuer,
	}
}

// ArchiveEntry is a regular file unpacked from a downloaded archive
type ArchiveEntry struct {
	Name    string
	Content []byte
}
