package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regscan/internal/domain"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(`^\d{5}$`, 4_718_592)
	require.NoError(t, err)
	return v
}

func TestNormalizeCodes_SingleCode(t *testing.T) {
	v := newTestValidator(t)

	codes, err := v.NormalizeCodes("12345")
	require.NoError(t, err)
	assert.Equal(t, []string{"12345"}, codes)
}

func TestNormalizeCodes_StripsSeparatorsAndWhitespace(t *testing.T) {
	v := newTestValidator(t)

	codes, err := v.NormalizeCodes(" 123-45 , 6_78 90 ,12345")
	require.NoError(t, err)
	assert.Equal(t, []string{"12345", "67890", "12345"}, codes)
}

func TestNormalizeCodes_DropsEmptyElements(t *testing.T) {
	v := newTestValidator(t)

	codes, err := v.NormalizeCodes("12345,, ,67890")
	require.NoError(t, err)
	assert.Equal(t, []string{"12345", "67890"}, codes)
}

func TestNormalizeCodes_AllEmpty(t *testing.T) {
	v := newTestValidator(t)

	for _, raw := range []string{"", ",,,", " , - , _ "} {
		_, err := v.NormalizeCodes(raw)
		assert.ErrorIs(t, err, domain.ErrNoValidCodes, "raw=%q", raw)
	}
}

func TestNormalizeCodes_FourDigitCodeRejected(t *testing.T) {
	v := newTestValidator(t)

	_, err := v.NormalizeCodes("1234")
	assert.ErrorIs(t, err, domain.ErrInvalidCodeFormat)
}

func TestNormalizeCodes_OneBadCodeRejectsAll(t *testing.T) {
	v := newTestValidator(t)

	_, err := v.NormalizeCodes("12345,99999,123456")
	assert.ErrorIs(t, err, domain.ErrInvalidCodeFormat)
}

func TestNormalizeCodes_CustomPattern(t *testing.T) {
	v, err := NewValidator(`^[A-Z]{2}\d{3}$`, 1024)
	require.NoError(t, err)

	codes, err := v.NormalizeCodes("AB123")
	require.NoError(t, err)
	assert.Equal(t, []string{"AB123"}, codes)

	_, err = v.NormalizeCodes("12345")
	assert.ErrorIs(t, err, domain.ErrInvalidCodeFormat)
}

func TestNewValidator_BadPattern(t *testing.T) {
	_, err := NewValidator(`[`, 1024)
	assert.Error(t, err)
}

func TestValidateUpload_Accepted(t *testing.T) {
	v := newTestValidator(t)

	for _, ct := range []string{"image/jpeg", "image/png", "image/webp", "image/gif"} {
		assert.NoError(t, v.ValidateUpload(ct, 1024), ct)
	}
}

func TestValidateUpload_MissingFile(t *testing.T) {
	v := newTestValidator(t)

	assert.ErrorIs(t, v.ValidateUpload("image/png", 0), domain.ErrMissingFile)
}

func TestValidateUpload_TooLargeBeforeTypeCheck(t *testing.T) {
	v := newTestValidator(t)

	// Oversized payloads are rejected regardless of content type.
	err := v.ValidateUpload("application/pdf", 5_000_000)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestValidateUpload_UnsupportedType(t *testing.T) {
	v := newTestValidator(t)

	err := v.ValidateUpload("application/pdf", 1024)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}
