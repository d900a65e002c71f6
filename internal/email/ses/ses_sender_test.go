package ses

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regscan/internal/domain"
	"regscan/internal/port"
)

func sampleEmail() port.ReportEmail {
	return port.ReportEmail{
		Attachment:   []byte("No,Product Code\n1,12345\n"),
		Filename:     "regscan_2025-03-14.csv",
		ContentType:  "text/csv",
		ProductCodes: []string{"12345"},
		Items: []domain.ExtractionItem{
			{ProductCode: "12345", BusinessRegNo: "123-45-67890", CompanyName: "Daehan Trading Co."},
		},
	}
}

func TestBuildRawMessage_ParsesAsMIME(t *testing.T) {
	email := sampleEmail()
	raw, err := buildRawMessage("regscan <noreply@example.com>", "reports@example.com",
		"[regscan] 1 match(es) for 12345", buildBodyText(email), email)
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "reports@example.com", msg.Header.Get("To"))
	assert.Contains(t, msg.Header.Get("From"), "noreply@example.com")

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])

	// Part 1: text body with the match summary.
	textPart, err := mr.NextPart()
	require.NoError(t, err)
	textBody, err := io.ReadAll(textPart)
	require.NoError(t, err)
	assert.Contains(t, string(textBody), "123-45-67890")
	assert.Contains(t, string(textBody), "Daehan Trading Co.")

	// Part 2: base64 attachment that decodes back to the artifact.
	attachPart, err := mr.NextPart()
	require.NoError(t, err)
	assert.Contains(t, attachPart.Header.Get("Content-Disposition"), email.Filename)
	assert.Equal(t, "base64", attachPart.Header.Get("Content-Transfer-Encoding"))

	encoded, err := io.ReadAll(attachPart)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, email.Attachment, decoded)
}

func TestBuildRawMessage_FoldsBase64Lines(t *testing.T) {
	email := sampleEmail()
	email.Attachment = bytes.Repeat([]byte("x"), 10_000)

	raw, err := buildRawMessage("a <a@example.com>", "b@example.com", "s", "body", email)
	require.NoError(t, err)

	for _, line := range strings.Split(string(raw), "\r\n") {
		assert.LessOrEqual(t, len(line), 998, "RFC 5322 line limit")
	}
}

func TestBuildBodyText_ListsEveryItem(t *testing.T) {
	email := sampleEmail()
	email.Items = append(email.Items, domain.ExtractionItem{
		ProductCode: "12345", BusinessRegNo: "987-65-43210", CompanyName: "Hanbit Industries",
	})

	body := buildBodyText(email)
	assert.Contains(t, body, "1. 12345")
	assert.Contains(t, body, "2. 12345")
	assert.Contains(t, body, "987-65-43210")
	assert.Contains(t, body, email.Filename)
}
