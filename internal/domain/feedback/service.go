// Package feedback produces role-specific resume critiques from a
// generative model.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Sooraj-Rao/college-resume-project/internal/domain/resume"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

var (
	ErrQueryRequired    = errors.New("Resume ID and query are required")
	ErrNoContent        = errors.New("Unable to extract resume content")
	ErrGenerationFailed = errors.New("Failed to generate AI feedback")
)

var feedbackDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "resumehub_ai_feedback_duration_seconds",
		Help:    "Time spent generating resume feedback",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40},
	},
	[]string{"result"},
)

const promptTemplate = `
You are a resume expert. Below is the extracted text from a real resume. The user is applying for the role: "%s".

Resume Text:
%s

Your task:
- Give **personalized feedback** based on this actual resume.
- Include suggestions for:
  1. Content improvements
  2. Skills to highlight
  3. Experience to emphasize
  4. Format suggestions
  5. Keywords to include
  6. Overall recommendations
- Keep it professional, actionable, and under 250 words.
Avoid typical AI-style intros and conclusions. Only output clean, structured feedback.
`

// ResumeFiles opens a resume's PDF for its owner.
type ResumeFiles interface {
	OpenOwned(ctx context.Context, userID, id uuid.UUID) (*resume.Resume, io.ReadCloser, int64, error)
}

type TextExtractor interface {
	Text(r io.Reader) (string, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Result struct {
	Feedback     string `json:"feedback"`
	FeedbackHTML string `json:"feedbackHtml"`
}

type Service interface {
	Feedback(ctx context.Context, userID, resumeID uuid.UUID, role string) (*Result, error)
}

type service struct {
	resumes   ResumeFiles
	extractor TextExtractor
	generator Generator
}

func NewService(resumes ResumeFiles, extractor TextExtractor, generator Generator) Service {
	return &service{resumes: resumes, extractor: extractor, generator: generator}
}

func BuildPrompt(role, resumeText string) string {
	return fmt.Sprintf(promptTemplate, role, resumeText)
}

// Feedback makes exactly one model call. Nothing is stored.
func (s *service) Feedback(ctx context.Context, userID, resumeID uuid.UUID, role string) (*Result, error) {
	role = strings.TrimSpace(role)
	if role == "" || resumeID == uuid.Nil {
		return nil, ErrQueryRequired
	}

	_, rc, _, err := s.resumes.OpenOwned(ctx, userID, resumeID)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	text, err := s.extractor.Text(rc)
	if err != nil {
		log.WithError(err).WithField("resume_id", resumeID).Warn("failed to extract resume text")
		return nil, ErrNoContent
	}
	if text == "" {
		return nil, ErrNoContent
	}

	start := time.Now()
	answer, err := s.generator.Generate(ctx, BuildPrompt(role, text))
	if err != nil {
		feedbackDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		log.WithError(err).WithField("resume_id", resumeID).Error("AI feedback failed")
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	feedbackDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	return &Result{Feedback: answer, FeedbackHTML: RenderHTML(answer)}, nil
}
