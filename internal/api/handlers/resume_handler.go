package handlers

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/Sooraj-Rao/college-resume-project/internal/api/dto"
	"github.com/Sooraj-Rao/college-resume-project/internal/api/middleware"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/resume"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	fileField = "resume"
	pdfType   = "application/pdf"
)

// multipartOverhead is the room left for form fields and part headers on
// top of the file size limit.
const multipartOverhead = 64 << 10

type ResumeHandler struct {
	resumes resume.Service
	maxBody int64
}

func NewResumeHandler(resumes resume.Service, maxFileBytes int64) *ResumeHandler {
	return &ResumeHandler{resumes: resumes, maxBody: maxFileBytes + multipartOverhead}
}

// pathID parses a uuid route parameter, writing a 400 when it is malformed.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// formFile opens the uploaded resume. A request without one yields a
// FileInput with no content so the service reports it. Bodies over the
// limit are cut off before they are buffered and reported as
// resume.ErrFileTooLarge.
func (h *ResumeHandler) formFile(c *gin.Context) (resume.FileInput, func(), error) {
	if c.Request.ContentLength > h.maxBody {
		return resume.FileInput{}, func() {}, resume.ErrFileTooLarge
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)

	header, err := c.FormFile(fileField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return resume.FileInput{}, func() {}, resume.ErrFileTooLarge
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return resume.FileInput{}, func() {}, nil
		}
		return resume.FileInput{}, func() {}, err
	}
	return openHeader(header)
}

// badUpload writes the response for a form that could not be read.
func badUpload(c *gin.Context, err error) {
	if errors.Is(err, resume.ErrFileTooLarge) {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusBadRequest, "Invalid upload")
}

func openHeader(header *multipart.FileHeader) (resume.FileInput, func(), error) {
	f, err := header.Open()
	if err != nil {
		return resume.FileInput{}, func() {}, err
	}
	return resume.FileInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     f,
	}, func() { _ = f.Close() }, nil
}

// sendPDF streams a stored file. disposition is "inline" or "attachment".
func sendPDF(c *gin.Context, disposition, filename string, body io.ReadCloser, size int64) {
	defer body.Close()
	headers := map[string]string{
		"Content-Disposition": mime.FormatMediaType(disposition, map[string]string{"filename": filename}),
		"Cache-Control":       "private, no-store",
	}
	c.DataFromReader(http.StatusOK, size, pdfType, body, headers)
}

// List returns the caller's resumes, newest first
// @Summary List resumes
// @Tags resumes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ResumeListResponse
// @Router /api/resumes [get]
func (h *ResumeHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	resumes, err := h.resumes.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ResumeListResponse{Success: true, Resumes: dto.NewResumeList(resumes)})
}

// Upload stores a new PDF resume
// @Summary Upload a resume
// @Tags resumes
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Display name"
// @Param resume formData file true "PDF file"
// @Success 201 {object} dto.ResumeEnvelope
// @Failure 400 {object} dto.MessageResponse
// @Router /api/resumes/upload [post]
func (h *ResumeHandler) Upload(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	file, closeFile, err := h.formFile(c)
	if err != nil {
		badUpload(c, err)
		return
	}
	defer closeFile()

	r, err := h.resumes.Upload(c.Request.Context(), userID, c.PostForm("name"), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ResumeEnvelope{Success: true, Resume: dto.NewResumeResponse(r)})
}

// Rename changes a resume's display name
// @Summary Rename a resume
// @Tags resumes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Param request body dto.RenameResumeRequest true "New name"
// @Success 200 {object} dto.ResumeEnvelope
// @Failure 404 {object} dto.MessageResponse
// @Router /api/resumes/{id} [put]
func (h *ResumeHandler) Rename(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req := middleware.GetValidated[dto.RenameResumeRequest](c)

	r, err := h.resumes.Rename(c.Request.Context(), userID, id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ResumeEnvelope{Success: true, Resume: dto.NewResumeResponse(r)})
}

// SetPrivacy makes a resume public or private
// @Summary Change resume visibility
// @Tags resumes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Param request body dto.PrivacyRequest true "Visibility"
// @Success 200 {object} dto.ResumeEnvelope
// @Router /api/resumes/{id}/privacy [put]
func (h *ResumeHandler) SetPrivacy(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req := middleware.GetValidated[dto.PrivacyRequest](c)

	r, err := h.resumes.SetPrivacy(c.Request.Context(), userID, id, *req.IsPublic)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ResumeEnvelope{Success: true, Resume: dto.NewResumeResponse(r)})
}

// Replace swaps the stored PDF, keeping links and analytics
// @Summary Replace a resume file
// @Tags resumes
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Param resume formData file true "PDF file"
// @Success 200 {object} dto.ResumeEnvelope
// @Failure 400 {object} dto.MessageResponse
// @Router /api/resumes/{id}/replace [put]
func (h *ResumeHandler) Replace(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	file, closeFile, err := h.formFile(c)
	if err != nil {
		badUpload(c, err)
		return
	}
	defer closeFile()

	r, err := h.resumes.Replace(c.Request.Context(), userID, id, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ResumeEnvelope{Success: true, Resume: dto.NewResumeResponse(r)})
}

// Delete removes a resume, its file and its analytics
// @Summary Delete a resume
// @Tags resumes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /api/resumes/{id} [delete]
func (h *ResumeHandler) Delete(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.resumes.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Resume deleted successfully"})
}

// Download sends the owner their own file
// @Summary Download own resume
// @Tags resumes
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Success 200 {file} file
// @Failure 404 {object} dto.MessageResponse
// @Router /api/resumes/{id}/download [get]
func (h *ResumeHandler) Download(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	r, body, size, err := h.resumes.OpenOwned(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	sendPDF(c, "attachment", r.OriginalName, body, size)
}

// GenerateShareURL builds a share link, optionally setting a custom alias
// @Summary Generate a share link
// @Tags resumes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ShareURLRequest true "Resume, alias and referrer"
// @Success 200 {object} dto.ShareURLResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /api/resumes/generate-share-url [post]
func (h *ResumeHandler) GenerateShareURL(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	req := middleware.GetValidated[dto.ShareURLRequest](c)

	resumeID, err := uuid.Parse(req.ResumeID)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid resumeId")
		return
	}

	link, err := h.resumes.GenerateShareURL(c.Request.Context(), userID, resume.ShareInput{
		ResumeID:  resumeID,
		CustomURL: req.CustomURL,
		Referrer:  req.Referrer,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ShareURLResponse{Success: true, ShareLink: *link})
}
