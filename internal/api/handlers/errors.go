package handlers

import (
	"errors"
	"net/http"

	"github.com/Sooraj-Rao/college-resume-project/internal/domain/analytics"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/feedback"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/otp"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/resume"
	"github.com/Sooraj-Rao/college-resume-project/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

const serverError = "Server error"

// errorStatus maps domain sentinels to status codes and client messages.
var errorStatus = []struct {
	err     error
	status  int
	message string
}{
	{resume.ErrResumeNotFound, http.StatusNotFound, "Resume not found"},
	{analytics.ErrResumeNotFound, http.StatusNotFound, "Resume not found"},
	{resume.ErrFileMissing, http.StatusNotFound, "Resume file not found"},
	{analytics.ErrSessionNotFound, http.StatusNotFound, "Analytics session not found"},
	{user.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{resume.ErrCustomURLTaken, http.StatusBadRequest, ""},
	{resume.ErrInvalidCustomURL, http.StatusBadRequest, ""},
	{resume.ErrNameRequired, http.StatusBadRequest, ""},
	{resume.ErrFileRequired, http.StatusBadRequest, ""},
	{resume.ErrInvalidFileType, http.StatusBadRequest, ""},
	{resume.ErrFileTooLarge, http.StatusBadRequest, ""},
	{analytics.ErrUnknownEvent, http.StatusBadRequest, ""},
	{user.ErrEmailExists, http.StatusBadRequest, "Email already in use"},
	{user.ErrInvalidCredentials, http.StatusBadRequest, "Invalid credentials"},
	{user.ErrInvalidInput, http.StatusBadRequest, "All fields are required"},
	{otp.ErrCodeExpired, http.StatusBadRequest, ""},
	{otp.ErrCodeInvalid, http.StatusBadRequest, ""},
	{otp.ErrAttemptsExceeded, http.StatusBadRequest, ""},
	{feedback.ErrQueryRequired, http.StatusBadRequest, ""},
	{feedback.ErrNoContent, http.StatusBadRequest, ""},
	{feedback.ErrGenerationFailed, http.StatusInternalServerError, ""},
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondError writes the error envelope. Unknown errors are logged and
// reported as a generic 500.
func respondError(c *gin.Context, err error) {
	for _, e := range errorStatus {
		if !errors.Is(err, e.err) {
			continue
		}
		message := e.message
		if message == "" {
			message = e.err.Error()
			var invalid *otp.InvalidCodeError
			if errors.As(err, &invalid) {
				message = invalid.Error()
			}
		}
		if e.status >= http.StatusInternalServerError {
			log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		}
		respondMessage(c, e.status, message)
		return
	}

	log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	respondMessage(c, http.StatusInternalServerError, serverError)
}
