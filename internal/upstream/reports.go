package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"inspection-portal/internal/hierarchy"
)

// ReportInput carries the writable report metadata fields. The parent
// references mirror the wire format: partner required, customer and
// unit optional.
type ReportInput struct {
	ReportNumber string `json:"reportNumber"`
	VNNumber     string `json:"vnNumber"`
	Status       string `json:"status"`
	AdminNote    string `json:"adminNote,omitempty"`
	PartnerID    string `json:"partnerId"`
	CustomerID   string `json:"customerId,omitempty"`
	UnitID       string `json:"unitId,omitempty"`
	SendEmail    bool   `json:"sendEmail"`
}

// ReportFile is a named attachment streamed into a multipart request.
type ReportFile struct {
	Name    string
	Content io.Reader
}

func (c *Client) GetReport(ctx context.Context, token, id string) (*hierarchy.Report, error) {
	var r hierarchy.Report
	if err := c.doJSON(ctx, token, http.MethodGet, "/api/reports/"+id, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReport creates a report with its initial attachments in a
// single multipart request, matching the upstream contract.
func (c *Client) CreateReport(ctx context.Context, token string, in ReportInput, files []ReportFile) (*hierarchy.Report, error) {
	body, contentType, err := reportForm(in, files)
	if err != nil {
		return nil, err
	}
	var r hierarchy.Report
	if err := c.do(ctx, token, http.MethodPost, "/api/reports", body, contentType, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) UpdateReport(ctx context.Context, token, id string, in ReportInput) (*hierarchy.Report, error) {
	var r hierarchy.Report
	if err := c.doJSON(ctx, token, http.MethodPut, "/api/reports/"+id, in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) DeleteReport(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, token, http.MethodDelete, "/api/reports/"+id, nil, nil)
}

// UploadReportFiles attaches additional files to an existing report.
func (c *Client) UploadReportFiles(ctx context.Context, token, id string, files []ReportFile) (*hierarchy.Report, error) {
	body, contentType, err := reportForm(ReportInput{}, files)
	if err != nil {
		return nil, err
	}
	var r hierarchy.Report
	if err := c.do(ctx, token, http.MethodPost, "/api/reports/"+id+"/files", body, contentType, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) DeleteReportFile(ctx context.Context, token, id, fileID string) error {
	return c.doJSON(ctx, token, http.MethodDelete, "/api/reports/"+id+"/files/"+fileID, nil, nil)
}

// Download streams a report's file bundle (or a single file when
// fileID is non-empty). The caller owns the returned body.
func (c *Client) Download(ctx context.Context, token, id, fileID string) (*Download, error) {
	path := "/api/reports/" + id + "/download"
	if fileID != "" {
		path += "/" + fileID
	}
	resp, err := c.stream(ctx, token, path)
	if err != nil {
		return nil, err
	}
	return &Download{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Disposition: resp.Header.Get("Content-Disposition"),
		Length:      resp.ContentLength,
	}, nil
}

// Download is a streamed file response from the upstream API.
type Download struct {
	Body        io.ReadCloser
	ContentType string
	Disposition string
	Length      int64
}

// SendReport triggers the upstream email side effect for a report.
func (c *Client) SendReport(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, token, http.MethodPost, "/api/reports/"+id+"/send", nil, nil)
}

// SendReportToPartner forwards the report to its partner recipient and
// flags it as new on the partner side.
func (c *Client) SendReportToPartner(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, token, http.MethodPost, "/api/reports/"+id+"/send-to-partner", nil, nil)
}

// MarkReportRead clears a report's isNew flag.
func (c *Client) MarkReportRead(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, token, http.MethodPost, "/api/reports/"+id+"/mark-read", nil, nil)
}

// SetPartnerNote updates the partner-side note of a report.
func (c *Client) SetPartnerNote(ctx context.Context, token, id, note string) error {
	payload := map[string]string{"partnerNote": note}
	return c.doJSON(ctx, token, http.MethodPut, "/api/reports/"+id+"/partner-note", payload, nil)
}

// reportForm builds the multipart body shared by report creation and
// file upload. Zero-valued metadata fields are omitted so a pure file
// upload carries only the files.
func reportForm(in ReportInput, files []ReportFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"reportNumber": in.ReportNumber,
		"vnNumber":     in.VNNumber,
		"status":       in.Status,
		"adminNote":    in.AdminNote,
		"partnerId":    in.PartnerID,
		"customerId":   in.CustomerID,
		"unitId":       in.UnitID,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %q: %w", name, err)
		}
	}
	if in.PartnerID != "" {
		// sendEmail only accompanies metadata submissions.
		if err := w.WriteField("sendEmail", fmt.Sprintf("%t", in.SendEmail)); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %q: %w", "sendEmail", err)
		}
	}

	for _, f := range files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file %q: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("failed to copy file %q: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
