package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESEmailProvider sends email through AWS SESv2
type SESEmailProvider struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
}

// NewSESEmailProvider creates a provider from a loaded AWS config
func NewSESEmailProvider(cfg aws.Config, fromEmail, fromName string) *SESEmailProvider {
	return &SESEmailProvider{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (p *SESEmailProvider) from() string {
	if p.fromName == "" {
		return p.fromEmail
	}
	return mime.QEncoding.Encode("UTF-8", p.fromName) + " <" + p.fromEmail + ">"
}

// SendEmail uses a simple message when there is nothing to attach and a raw
// MIME message otherwise
func (p *SESEmailProvider) SendEmail(ctx context.Context, msg EmailMessage) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(p.from()),
		Destination:      &sestypes.Destination{ToAddresses: msg.To},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	if len(msg.Attachments) == 0 {
		input.Content = &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    &sestypes.Body{Html: &sestypes.Content{Data: aws.String(msg.HTMLBody), Charset: aws.String("UTF-8")}},
			},
		}
	} else {
		raw, err := BuildMIMEMessage(p.from(), msg)
		if err != nil {
			return err
		}
		input.Content = &sestypes.EmailContent{Raw: &sestypes.RawMessage{Data: raw}}
	}

	if _, err := p.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// BuildMIMEMessage encodes msg as multipart/mixed with a base64 HTML part and one part per attachment
func BuildMIMEMessage(from string, msg EmailMessage) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/html; charset=UTF-8"},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write(wrapBase64([]byte(msg.HTMLBody))); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {mime.FormatMediaType(contentType, map[string]string{"name": a.Filename})},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(wrapBase64(a.Data)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	header := func(k, v string) { out.WriteString(k + ": " + v + "\r\n") }
	header("From", from)
	header("To", strings.Join(msg.To, ", "))
	if msg.ReplyTo != "" {
		header("Reply-To", msg.ReplyTo)
	}
	header("Subject", mime.BEncoding.Encode("UTF-8", msg.Subject))
	header("MIME-Version", "1.0")
	header("Content-Type", mime.FormatMediaType("multipart/mixed", map[string]string{"boundary": mw.Boundary()}))
	out.WriteString("\r\n")
	out.Write(body.Bytes())

	return out.Bytes(), nil
}

// wrapBase64 encodes data in 76 character lines
func wrapBase64(data []byte) []byte {
	enc := base64.StdEncoding.EncodeToString(data)
	var buf bytes.Buffer
	for len(enc) > 76 {
		buf.WriteString(enc[:76])
		buf.WriteString("\r\n")
		enc = enc[76:]
	}
	buf.WriteString(enc)
	buf.WriteString("\r\n")
	return buf.Bytes()
}
