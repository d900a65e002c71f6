package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"regscan/internal/config"
	"regscan/internal/csvexport"
	"regscan/internal/domain"
	"regscan/internal/input"
	"regscan/internal/port"
	"regscan/internal/validate"
	"regscan/internal/xlsxexport"
)

// ProcessInput carries the raw request fields into the pipeline.
type ProcessInput struct {
	ProductCode string // comma-separated, as submitted
	ImageBytes  []byte
	ContentType string
	Size        int64
}

// ProcessResult is the assembled pipeline outcome for one request.
type ProcessResult struct {
	ProductCodes  []string
	Items         []domain.ExtractionItem
	TotalFound    int
	Confidence    float64
	Provider      string
	Model         string
	CorrelationID string
	Emailed       bool
	EmailError    string
}

// ProcessService runs the extraction pipeline: validate input, call the
// vision model, validate the result, build the export, email it. Sequential,
// single logical thread of control per request; the only shared state is the
// injected collaborators, all read-only after construction.
type ProcessService struct {
	validator *input.Validator
	extractor port.RowExtractor
	sender    port.EmailSender
	cfg       *config.Config
	now       func() time.Time
}

// NewProcessService wires the pipeline from its collaborators.
func NewProcessService(validator *input.Validator, extractor port.RowExtractor, sender port.EmailSender, cfg *config.Config) *ProcessService {
	return &ProcessService{
		validator: validator,
		extractor: extractor,
		sender:    sender,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Process runs one request through the full pipeline. An email-send failure
// is recovered locally and reported via Emailed/EmailError; the caller's
// extracted data is never discarded because the notification channel failed.
func (s *ProcessService) Process(ctx context.Context, in ProcessInput) (*ProcessResult, error) {
	codes, err := s.validator.NormalizeCodes(in.ProductCode)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateUpload(in.ContentType, in.Size); err != nil {
		return nil, err
	}

	res, err := s.extractor.Extract(ctx, port.ExtractInput{
		ImageBytes:   in.ImageBytes,
		ContentType:  in.ContentType,
		ProductCodes: codes,
	})
	if err != nil {
		if errors.Is(err, domain.ErrMalformedResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	if err := validate.Result(res, s.cfg.Extract.MinConfidence); err != nil {
		return nil, err
	}

	processedAt := s.now().UTC()
	artifact, filename, contentType, err := s.buildExport(res.Items, processedAt)
	if err != nil {
		return nil, fmt.Errorf("building export: %w", err)
	}

	out := &ProcessResult{
		ProductCodes:  codes,
		Items:         res.Items,
		TotalFound:    res.TotalFound,
		Confidence:    res.Confidence,
		Provider:      res.Provider,
		Model:         res.Model,
		CorrelationID: res.CorrelationID,
	}

	sendRes, err := s.sender.SendExtractionReport(ctx, port.ReportEmail{
		Attachment:   artifact,
		Filename:     filename,
		ContentType:  contentType,
		ProductCodes: codes,
		Items:        res.Items,
	})
	if err != nil {
		log.Printf("processService.Process: email send failed: %v", err)
		out.EmailError = err.Error()
		return out, nil
	}
	out.Emailed = true
	if sendRes != nil && sendRes.MessageID != "" {
		log.Printf("processService.Process: emailed report, message id %s", sendRes.MessageID)
	}
	return out, nil
}

// buildExport renders the validated items into the configured artifact format.
func (s *ProcessService) buildExport(items []domain.ExtractionItem, processedAt time.Time) (artifact []byte, filename, contentType string, err error) {
	if s.cfg.Export.Format == "xlsx" {
		artifact, err = xlsxexport.Build(items, processedAt)
		return artifact, xlsxexport.BuildFilename(processedAt),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	}
	artifact, err = csvexport.Build(items, processedAt)
	return artifact, csvexport.BuildFilename(processedAt), "text/csv", err
}

// MaxUploadBytes returns the configured upload payload ceiling.
func (s *ProcessService) MaxUploadBytes() int64 {
	return s.validator.MaxFileBytes()
}

// TestModelConnection resolves the model the extractor would use.
func (s *ProcessService) TestModelConnection(ctx context.Context) (string, error) {
	return s.extractor.TestConnection(ctx)
}

// TestEmailConnection verifies email credentials, optionally sending a
// literal test message.
func (s *ProcessService) TestEmailConnection(ctx context.Context, send bool) error {
	return s.sender.Verify(ctx, send)
}
