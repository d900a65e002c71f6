package ses

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"regscan/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	toAddress   string
}

// NewSESSender creates an SES-backed EmailSender delivering to the fixed
// recipient address.
func NewSESSender(region, fromAddress, fromName, toAddress string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
		toAddress:   toAddress,
	}, nil
}

func (s *sesSender) SendExtractionReport(ctx context.Context, email port.ReportEmail) (*port.SendResult, error) {
	subject := fmt.Sprintf("[regscan] %d match(es) for %s", len(email.Items), strings.Join(email.ProductCodes, ", "))
	raw, err := buildRawMessage(s.from(), s.toAddress, subject, buildBodyText(email), email)
	if err != nil {
		return nil, fmt.Errorf("building MIME message: %w", err)
	}

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("SES SendEmail: %w", err)
	}

	res := &port.SendResult{}
	if out.MessageId != nil {
		res.MessageID = *out.MessageId
	}
	return res, nil
}

// Verify checks SES credentials via GetAccount and, when send is true,
// delivers a literal test message to the fixed recipient.
func (s *sesSender) Verify(ctx context.Context, send bool) error {
	if _, err := s.client.GetAccount(ctx, &sesv2.GetAccountInput{}); err != nil {
		return fmt.Errorf("SES GetAccount: %w", err)
	}
	if !send {
		return nil
	}

	from := s.from()
	subject := "regscan email connection test"
	body := fmt.Sprintf("This is a test message sent at %s.", time.Now().Format(time.RFC3339))
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.toAddress},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Text: &types.Content{Data: &body},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail (test): %w", err)
	}
	return nil
}

func (s *sesSender) from() string {
	return fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
}

// buildBodyText summarizes the matched rows for the plain-text part.
func buildBodyText(email port.ReportEmail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Extraction report for product code(s): %s\n\n", strings.Join(email.ProductCodes, ", "))
	for i, item := range email.Items {
		fmt.Fprintf(&b, "%d. %s  %s  %s\n", i+1, item.ProductCode, item.CompanyName, item.BusinessRegNo)
	}
	fmt.Fprintf(&b, "\nThe full export is attached as %s.\n", email.Filename)
	return b.String()
}

// buildRawMessage assembles a multipart/mixed MIME message with a text body
// and one base64-encoded attachment.
func buildRawMessage(from, to, subject, body string, email port.ReportEmail) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	textPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/plain; charset="UTF-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, err
	}

	contentType := email.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	attachPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {fmt.Sprintf("%s; name=%q", contentType, email.Filename)},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", email.Filename)},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(email.Attachment)
	// Fold the base64 payload at 76 chars per RFC 2045.
	for len(encoded) > 0 {
		n := 76
		if n > len(encoded) {
			n = len(encoded)
		}
		if _, err := attachPart.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return nil, err
		}
		encoded = encoded[n:]
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
