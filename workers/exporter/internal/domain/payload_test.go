package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayload(t *testing.T) {
	tests := []struct {
		name        string
		content     []byte
		url         string
		contentType string
		wantErr     error
		wantType    string
	}{
		{
			name:        "valid payload",
			content:     []byte("<response/>"),
			url:         "https://registers.esma.europa.eu/solr/select",
			contentType: "text/xml; charset=UTF-8",
			wantType:    "text/xml",
		},
		{
			name:    "empty content",
			content: nil,
			url:     "https://example.com",
			wantErr: ErrEmptyContent,
		},
		{
			name:    "empty url",
			content: []byte("x"),
			wantErr: ErrEmptyURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := NewPayload(tt.content, tt.url, tt.contentType)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, payload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, payload.ContentType())
			assert.Equal(t, tt.url, payload.URL())
			assert.Equal(t, int64(len(tt.content)), payload.Size())
		})
	}
}

func TestNewPayloadFromReader_SizeLimit(t *testing.T) {
	payload, err := NewPayloadFromReader(strings.NewReader("12345"), "https://example.com/a.zip", "application/zip", 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("12345"), payload.Content())

	_, err = NewPayloadFromReader(strings.NewReader("123456"), "https://example.com/a.zip", "application/zip", 5)
	assert.ErrorIs(t, err, ErrSizeExceeded)
	assert.EqualError(t, err, "content size exceeds maximum 5")
}

func TestPayload_HashAndImmutability(t *testing.T) {
	payload, err := NewPayload([]byte("abc"), "https://example.com", "")
	require.NoError(t, err)

	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", payload.Hash())

	content := payload.Content()
	content[0] = 'z'
	assert.Equal(t, []byte("abc"), payload.Content())
}

func TestDomainError_Is(t *testing.T) {
	err := NewDomainError("MISSING_FIELD", "field NtnlCcy missing", errors.New("element 2"), false)

	assert.ErrorIs(t, err, ErrMissingField)
	assert.NotErrorIs(t, err, ErrEntryNotFound)
	assert.Equal(t, "MISSING_FIELD: field NtnlCcy missing - element 2", err.Error())
	assert.Equal(t, "INVALID_ENCODING: The document is not valid UTF-8", ErrInvalidEncoding.Error())
}

func TestInstrumentRecord_Row(t *testing.T) {
	record := InstrumentRecord{
		ID:                           "DE000A1R07V3",
		FullName:                     "Kreditanst.f.Wiederaufbau Anl.v.2014 (2021)",
		ClassificationType:           "DBFTFB",
		CommodityDerivativeIndicator: "false",
		NotionalCurrency:             "EUR",
		Issuer:                       "549300GDPG70E3MBBU98",
	}

	assert.Equal(t, []string{
		"DE000A1R07V3",
		"Kreditanst.f.Wiederaufbau Anl.v.2014 (2021)",
		"DBFTFB",
		"false",
		"EUR",
		"549300GDPG70E3MBBU98",
	}, record.Row())
}
