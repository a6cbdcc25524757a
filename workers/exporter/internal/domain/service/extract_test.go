package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firds/shared/config"
	"firds/workers/exporter/internal/domain"
)

const auth036 = "urn:iso:std:iso:20022:tech:xsd:auth.036.001.02"

func instrument(id, name, issuer string) string {
	issr := ""
	if issuer != "" {
		issr = "<Issr>" + issuer + "</Issr>"
	}
	return fmt.Sprintf(`<TermntdRcrd><FinInstrmGnlAttrbts>
<Id>%s</Id>
<FullNm>%s</FullNm>
<ShrtNm>short</ShrtNm>
<ClssfctnTp>DBFTFB</ClssfctnTp>
<NtnlCcy>EUR</NtnlCcy>
<CmmdtyDerivInd>false</CmmdtyDerivInd>
%s</FinInstrmGnlAttrbts></TermntdRcrd>`, id, name, issr)
}

func document(body ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<BizData xmlns="urn:iso:std:iso:20022:tech:xsd:head.003.001.01">
<Pyld><Document xmlns="` + auth036 + `"><FinInstrmRptgRefDataDltaRpt>` +
		strings.Join(body, "\n") +
		`</FinInstrmRptgRefDataDltaRpt></Document></Pyld></BizData>`
}

func newTestExtractor() *Extractor {
	return NewExtractor(config.DefaultExtractConfig())
}

func TestExtractor_Extract(t *testing.T) {
	doc := document(
		`<TermntdRcrd><FinInstrmGnlAttrbts>
<Id>DE000A1R07V3</Id><FullNm>Kreditanst.f.Wiederaufbau Anl.v.2014 (2021)</FullNm>
<ClssfctnTp>DBFTFB</ClssfctnTp><CmmdtyDerivInd>false</CmmdtyDerivInd><NtnlCcy>EUR</NtnlCcy>
<Issr>549300GDPG70E3MBBU98</Issr>
</FinInstrmGnlAttrbts></TermntdRcrd>`,
		instrument("DE000A1R07V4", "Second", ""),
	)

	records, err := newTestExtractor().Extract(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, domain.InstrumentRecord{
		ID:                           "DE000A1R07V3",
		FullName:                     "Kreditanst.f.Wiederaufbau Anl.v.2014 (2021)",
		ClassificationType:           "DBFTFB",
		CommodityDerivativeIndicator: "false",
		NotionalCurrency:             "EUR",
		Issuer:                       "549300GDPG70E3MBBU98",
	}, records[0])

	assert.Equal(t, "DE000A1R07V4", records[1].ID)
	assert.Equal(t, "False", records[1].Issuer, "an element without Issr gets the literal sentinel")
}

func TestExtractor_PreservesOrderAndCount(t *testing.T) {
	var body []string
	for i := 0; i < 25; i++ {
		body = append(body, fmt.Sprintf(`<FinInstrmGnlAttrbts><Id>ID%02d</Id><FullNm>Name %d</FullNm>`+
			`<ClssfctnTp>T</ClssfctnTp><CmmdtyDerivInd>true</CmmdtyDerivInd><NtnlCcy>USD</NtnlCcy>`+
			`<Issr>ISS%d</Issr></FinInstrmGnlAttrbts>`, i, i, i))
	}

	records, err := newTestExtractor().Extract(strings.NewReader(document(body...)))
	require.NoError(t, err)
	require.Len(t, records, 25)
	for i, record := range records {
		assert.Equal(t, fmt.Sprintf("ID%02d", i), record.ID)
		assert.Equal(t, fmt.Sprintf("ISS%d", i), record.Issuer)
	}
}

func TestExtractor_FieldText(t *testing.T) {
	doc := document(`<FinInstrmGnlAttrbts><Id> padded </Id><FullNm/>` +
		`<ClssfctnTp>A&amp;B</ClssfctnTp><CmmdtyDerivInd>false</CmmdtyDerivInd><NtnlCcy>EUR</NtnlCcy>` +
		`<Issr></Issr></FinInstrmGnlAttrbts>`)

	records, err := newTestExtractor().Extract(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, " padded ", records[0].ID)
	assert.Equal(t, "", records[0].FullName)
	assert.Equal(t, "A&B", records[0].ClassificationType)
	assert.Equal(t, "", records[0].Issuer, "a present but empty Issr stays empty")
}

func TestExtractor_IgnoresOtherNamespaces(t *testing.T) {
	doc := `<Root xmlns:o="urn:other"><o:FinInstrmGnlAttrbts><o:Id>X</o:Id></o:FinInstrmGnlAttrbts></Root>`

	records, err := newTestExtractor().Extract(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestExtractor_Failures(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "malformed after valid records",
			input:   strings.TrimSuffix(document(instrument("A", "a", "I"), instrument("B", "b", "")), "</BizData>"),
			wantErr: domain.ErrMalformedDocument,
		},
		{
			name:    "not xml",
			input:   "PK\x03\x04 binary",
			wantErr: domain.ErrMalformedDocument,
		},
		{
			name: "missing required field",
			input: document(instrument("A", "a", "I"),
				`<FinInstrmGnlAttrbts><Id>B</Id><FullNm>b</FullNm><ClssfctnTp>T</ClssfctnTp><CmmdtyDerivInd>true</CmmdtyDerivInd></FinInstrmGnlAttrbts>`),
			wantErr: domain.ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := newTestExtractor().Extract(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotNil(t, records)
			assert.Empty(t, records, "partial progress is discarded")
		})
	}
}

func TestExtractor_MissingFieldNamesElement(t *testing.T) {
	doc := document(instrument("A", "a", ""), `<FinInstrmGnlAttrbts><Id>B</Id></FinInstrmGnlAttrbts>`)

	_, err := newTestExtractor().Extract(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field FullNm missing in element 2")
}

func TestExtractor_CustomIssuerSentinel(t *testing.T) {
	cfg := config.DefaultExtractConfig()
	cfg.MissingIssuer = ""

	records, err := NewExtractor(cfg).Extract(strings.NewReader(document(instrument("A", "a", ""))))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Issuer)
}

func TestExtractor_MixedContentJoinsDirectText(t *testing.T) {
	doc := document(instrument("ID1", "Front<!-- note -->Back", ""))

	records, err := newTestExtractor().Extract(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "FrontBack", records[0].FullName)
}
