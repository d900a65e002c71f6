package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regscan/internal/config"
	"regscan/internal/csvexport"
	"regscan/internal/domain"
	"regscan/internal/extract/mock"
	"regscan/internal/input"
	"regscan/internal/port"
)

// fakeExtractor returns a canned result or error.
type fakeExtractor struct {
	res   *domain.ExtractionResult
	err   error
	calls int
	last  port.ExtractInput
}

func (f *fakeExtractor) Extract(_ context.Context, in port.ExtractInput) (*domain.ExtractionResult, error) {
	f.calls++
	f.last = in
	return f.res, f.err
}

func (f *fakeExtractor) TestConnection(_ context.Context) (string, error) {
	return "fake-model", nil
}

// fakeSender records the report it was handed.
type fakeSender struct {
	err  error
	sent *port.ReportEmail
}

func (f *fakeSender) SendExtractionReport(_ context.Context, email port.ReportEmail) (*port.SendResult, error) {
	f.sent = &email
	if f.err != nil {
		return nil, f.err
	}
	return &port.SendResult{MessageID: "msg-1"}, nil
}

func (f *fakeSender) Verify(_ context.Context, _ bool) error {
	return f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Extract: config.ExtractConfig{
			CodePattern:   `^\d{5}$`,
			MinConfidence: 0.6,
			MaxFileBytes:  4_718_592,
		},
		Export: config.ExportConfig{Format: "csv"},
	}
}

func newTestService(t *testing.T, extractor port.RowExtractor, sender port.EmailSender) *ProcessService {
	t.Helper()
	cfg := testConfig()
	v, err := input.NewValidator(cfg.Extract.CodePattern, cfg.Extract.MaxFileBytes)
	require.NoError(t, err)
	return NewProcessService(v, extractor, sender, cfg)
}

func validInput() ProcessInput {
	return ProcessInput{
		ProductCode: "12345",
		ImageBytes:  []byte("fake-image"),
		ContentType: "image/png",
		Size:        10,
	}
}

func goodResult() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		Items: []domain.ExtractionItem{
			{ProductCode: "12345", BusinessRegNo: "1234567890", CompanyName: "Acme Ltd"},
		},
		TotalFound:    1,
		Confidence:    0.9,
		Provider:      domain.ProviderClaude,
		Model:         "claude-sonnet-4-20250514",
		CorrelationID: "corr-1",
	}
}

func TestProcess_HappyPath(t *testing.T) {
	ext := &fakeExtractor{res: goodResult()}
	sender := &fakeSender{}
	svc := newTestService(t, ext, sender)

	out, err := svc.Process(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, []string{"12345"}, out.ProductCodes)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "123-45-67890", out.Items[0].BusinessRegNo, "reg no is normalized")
	assert.True(t, out.Emailed)
	assert.Empty(t, out.EmailError)
	assert.Equal(t, "corr-1", out.CorrelationID)

	require.NotNil(t, sender.sent)
	assert.Equal(t, "text/csv", sender.sent.ContentType)
	assert.True(t, bytes.HasPrefix(sender.sent.Attachment, csvexport.BOM))
	assert.Contains(t, sender.sent.Filename, ".csv")
}

func TestProcess_MockModeScenario(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(t, mock.NewExtractor(), sender)

	out, err := svc.Process(context.Background(), validInput())
	require.NoError(t, err)

	require.Len(t, out.Items, 2)
	assert.InDelta(t, 0.95, out.Confidence, 1e-9)
	assert.Equal(t, domain.ProviderMock, out.Provider)
	assert.Equal(t, "123-45-67890", out.Items[0].BusinessRegNo)
	assert.Equal(t, "987-65-43210", out.Items[1].BusinessRegNo)
	assert.True(t, out.Emailed)
}

func TestProcess_InvalidCodeRejectedBeforeExtraction(t *testing.T) {
	ext := &fakeExtractor{res: goodResult()}
	svc := newTestService(t, ext, &fakeSender{})

	in := validInput()
	in.ProductCode = "1234"
	_, err := svc.Process(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrInvalidCodeFormat)
	assert.Zero(t, ext.calls, "model must not be called for invalid input")
}

func TestProcess_NoValidCodesRejectedBeforeExtraction(t *testing.T) {
	ext := &fakeExtractor{res: goodResult()}
	svc := newTestService(t, ext, &fakeSender{})

	in := validInput()
	in.ProductCode = " , ,"
	_, err := svc.Process(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrNoValidCodes)
	assert.Zero(t, ext.calls)
}

func TestProcess_OversizedFileRejected(t *testing.T) {
	ext := &fakeExtractor{res: goodResult()}
	svc := newTestService(t, ext, &fakeSender{})

	in := validInput()
	in.Size = 5_000_000
	_, err := svc.Process(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	assert.Zero(t, ext.calls)
}

func TestProcess_EmptyExtractionBeatsLowConfidence(t *testing.T) {
	ext := &fakeExtractor{res: &domain.ExtractionResult{Items: nil, TotalFound: 0, Confidence: 0}}
	svc := newTestService(t, ext, &fakeSender{})

	_, err := svc.Process(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrEmptyExtraction)
	assert.NotErrorIs(t, err, domain.ErrLowConfidence)
}

func TestProcess_LowConfidence(t *testing.T) {
	res := goodResult()
	res.Confidence = 0.3
	svc := newTestService(t, &fakeExtractor{res: res}, &fakeSender{})

	_, err := svc.Process(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrLowConfidence)
}

func TestProcess_ProviderFailureWrapped(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{err: errors.New("exhausted retries")}, &fakeSender{})

	_, err := svc.Process(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestProcess_MalformedResponsePreserved(t *testing.T) {
	malformed := fmt.Errorf("%w: no JSON object found", domain.ErrMalformedResponse)
	svc := newTestService(t, &fakeExtractor{err: malformed}, &fakeSender{})

	_, err := svc.Process(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.NotErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestProcess_EmailFailureDoesNotFailRequest(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp on fire")}
	svc := newTestService(t, &fakeExtractor{res: goodResult()}, sender)

	out, err := svc.Process(context.Background(), validInput())
	require.NoError(t, err, "email failure must not discard extracted data")

	assert.False(t, out.Emailed)
	assert.Contains(t, out.EmailError, "smtp on fire")
	require.Len(t, out.Items, 1)
}

func TestProcess_XlsxExportFormat(t *testing.T) {
	cfg := testConfig()
	cfg.Export.Format = "xlsx"
	v, err := input.NewValidator(cfg.Extract.CodePattern, cfg.Extract.MaxFileBytes)
	require.NoError(t, err)
	sender := &fakeSender{}
	svc := NewProcessService(v, &fakeExtractor{res: goodResult()}, sender, cfg)

	out, err := svc.Process(context.Background(), validInput())
	require.NoError(t, err)
	assert.True(t, out.Emailed)

	require.NotNil(t, sender.sent)
	assert.Contains(t, sender.sent.Filename, ".xlsx")
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", sender.sent.ContentType)
	// XLSX files are zip archives.
	assert.True(t, bytes.HasPrefix(sender.sent.Attachment, []byte("PK")))
}

func TestTestModelConnection(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{}, &fakeSender{})
	model, err := svc.TestModelConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fake-model", model)
}

func TestTestEmailConnection(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{}, &fakeSender{err: errors.New("bad creds")})
	assert.Error(t, svc.TestEmailConnection(context.Background(), false))
}
