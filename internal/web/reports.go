package web

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"inspection-portal/internal/hierarchy"
	"inspection-portal/internal/reportnum"
	"inspection-portal/internal/upstream"
)

func reportForm(c *gin.Context) upstream.ReportInput {
	return upstream.ReportInput{
		ReportNumber: reportnum.Normalize(c.PostForm("reportNumber")),
		VNNumber:     c.PostForm("vnNumber"),
		Status:       c.PostForm("status"),
		AdminNote:    c.PostForm("adminNote"),
		PartnerID:    c.PostForm("partnerId"),
		CustomerID:   c.PostForm("customerId"),
		UnitID:       c.PostForm("unitId"),
		SendEmail:    c.PostForm("sendEmail") == "on" || c.PostForm("sendEmail") == "true",
	}
}

// formFiles opens the uploaded attachments for streaming into the
// upstream multipart request. The callers close them via the returned
// closer once the request has been sent.
func formFiles(c *gin.Context) ([]upstream.ReportFile, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, err
	}

	var files []upstream.ReportFile
	var opened []io.Closer
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		files = append(files, upstream.ReportFile{Name: fh.Filename, Content: f})
	}
	return files, closeAll, nil
}

// CreateReport creates a report with its attachments. Report number,
// VN number, partner and at least one file are required; the report
// number is normalized to its canonical WO form before submission.
func (h *Handler) CreateReport(c *gin.Context) {
	in := reportForm(c)
	if in.Status == "" {
		in.Status = hierarchy.StatusActive
	}

	files, closeFiles, err := formFiles(c)
	if err != nil {
		h.failPage(c, dashboardFor(c), requiredFields("Invalid file upload"))
		return
	}
	defer closeFiles()

	switch {
	case in.ReportNumber == "" || in.VNNumber == "" || in.PartnerID == "":
		h.failPage(c, dashboardFor(c), requiredFields("Report number, VN number and partner are required"))
		return
	case len(files) == 0:
		h.failPage(c, dashboardFor(c), requiredFields("At least one file is required"))
		return
	}

	h.mutateAndRefetch(c, func(token string) error {
		_, err := h.upstream.CreateReport(c.Request.Context(), token, in, files)
		return err
	})
}

// UpdateReport updates report metadata. There is no rollback when the
// upstream applies the change partially; the follow-up refetch shows
// whatever state the server settled on.
func (h *Handler) UpdateReport(c *gin.Context) {
	id := c.Param("id")
	in := reportForm(c)
	if in.ReportNumber == "" || in.VNNumber == "" || in.PartnerID == "" {
		h.failPage(c, dashboardFor(c), requiredFields("Report number, VN number and partner are required"))
		return
	}
	h.mutateAndRefetch(c, func(token string) error {
		_, err := h.upstream.UpdateReport(c.Request.Context(), token, id, in)
		return err
	})
}

func (h *Handler) DeleteReport(c *gin.Context) {
	h.deleteAndReconcile(c, hierarchy.KindReport, func(token string) error {
		return h.upstream.DeleteReport(c.Request.Context(), token, c.Param("id"))
	})
}

func (h *Handler) SendReport(c *gin.Context) {
	h.mutateAndRefetch(c, func(token string) error {
		return h.upstream.SendReport(c.Request.Context(), token, c.Param("id"))
	})
}

func (h *Handler) SendReportToPartner(c *gin.Context) {
	h.mutateAndRefetch(c, func(token string) error {
		return h.upstream.SendReportToPartner(c.Request.Context(), token, c.Param("id"))
	})
}

func (h *Handler) UploadReportFiles(c *gin.Context) {
	files, closeFiles, err := formFiles(c)
	if err != nil || len(files) == 0 {
		h.failPage(c, dashboardFor(c), requiredFields("At least one file is required"))
		return
	}
	defer closeFiles()

	h.mutateAndRefetch(c, func(token string) error {
		_, err := h.upstream.UploadReportFiles(c.Request.Context(), token, c.Param("id"), files)
		return err
	})
}

func (h *Handler) DeleteReportFile(c *gin.Context) {
	h.mutateAndRefetch(c, func(token string) error {
		return h.upstream.DeleteReportFile(c.Request.Context(), token, c.Param("id"), c.Param("fileId"))
	})
}

// DownloadReport streams a file bundle (or a single file) straight
// through to the browser.
func (h *Handler) DownloadReport(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	dl, err := h.upstream.Download(c.Request.Context(), sess.Token, c.Param("id"), c.Param("fileId"))
	if err != nil {
		h.failPage(c, sess.Role.DashboardPath(), err)
		return
	}
	defer dl.Body.Close()

	c.DataFromReader(http.StatusOK, dl.Length, dl.ContentType, dl.Body, map[string]string{
		"Content-Disposition": dl.Disposition,
	})
}

// MarkReportRead clears the report's unread flag on the partner side.
func (h *Handler) MarkReportRead(c *gin.Context) {
	h.mutateAndRefetch(c, func(token string) error {
		return h.upstream.MarkReportRead(c.Request.Context(), token, c.Param("id"))
	})
}

// SetPartnerNote saves the partner's note on a report.
func (h *Handler) SetPartnerNote(c *gin.Context) {
	h.mutateAndRefetch(c, func(token string) error {
		return h.upstream.SetPartnerNote(c.Request.Context(), token, c.Param("id"), c.PostForm("partnerNote"))
	})
}
