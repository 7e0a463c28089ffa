package feedback

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Sooraj-Rao/college-resume-project/internal/domain/resume"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFiles struct {
	owner uuid.UUID
	id    uuid.UUID
	err   error
}

func (m *mockFiles) OpenOwned(ctx context.Context, userID, id uuid.UUID) (*resume.Resume, io.ReadCloser, int64, error) {
	if m.err != nil {
		return nil, nil, 0, m.err
	}
	if userID != m.owner || id != m.id {
		return nil, nil, 0, resume.ErrResumeNotFound
	}
	return &resume.Resume{ID: id}, io.NopCloser(strings.NewReader("%PDF-")), 5, nil
}

type mockExtractor struct {
	text string
	err  error
}

func (m mockExtractor) Text(r io.Reader) (string, error) {
	return m.text, m.err
}

type mockGenerator struct {
	prompts []string
	answer  string
	err     error
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.answer, m.err
}

func TestFeedback(t *testing.T) {
	ctx := context.Background()
	files := &mockFiles{owner: uuid.New(), id: uuid.New()}
	gen := &mockGenerator{answer: "1. Content improvements\n- Quantify **impact**"}
	svc := NewService(files, mockExtractor{text: "Go developer, 5 years"}, gen)

	res, err := svc.Feedback(ctx, files.owner, files.id, " Backend Engineer ")
	require.NoError(t, err)
	assert.Equal(t, gen.answer, res.Feedback)
	assert.Equal(t, "<h4>Content improvements</h4><ul><li>Quantify <strong>impact</strong></li></ul>", res.FeedbackHTML)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `applying for the role: "Backend Engineer"`)
	assert.Contains(t, gen.prompts[0], "Go developer, 5 years")
}

func TestFeedback_Errors(t *testing.T) {
	owner, id := uuid.New(), uuid.New()
	tests := []struct {
		name      string
		files     *mockFiles
		extractor mockExtractor
		gen       *mockGenerator
		resumeID  uuid.UUID
		role      string
		wantErr   error
	}{
		{"missing role", &mockFiles{owner: owner, id: id}, mockExtractor{text: "x"}, &mockGenerator{}, id, " ", ErrQueryRequired},
		{"missing resume id", &mockFiles{owner: owner, id: id}, mockExtractor{text: "x"}, &mockGenerator{}, uuid.Nil, "SRE", ErrQueryRequired},
		{"not owner", &mockFiles{owner: uuid.New(), id: id}, mockExtractor{text: "x"}, &mockGenerator{}, id, "SRE", resume.ErrResumeNotFound},
		{"file gone", &mockFiles{err: resume.ErrFileMissing}, mockExtractor{text: "x"}, &mockGenerator{}, id, "SRE", resume.ErrFileMissing},
		{"image only pdf", &mockFiles{owner: owner, id: id}, mockExtractor{}, &mockGenerator{}, id, "SRE", ErrNoContent},
		{"unparsable pdf", &mockFiles{owner: owner, id: id}, mockExtractor{err: errors.New("bad xref")}, &mockGenerator{}, id, "SRE", ErrNoContent},
		{"model failure", &mockFiles{owner: owner, id: id}, mockExtractor{text: "x"}, &mockGenerator{err: errors.New("quota")}, id, "SRE", ErrGenerationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.files, tt.extractor, tt.gen)
			_, err := svc.Feedback(context.Background(), owner, tt.resumeID, tt.role)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRenderHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraph", "Strong profile.", "<p>Strong profile.</p>"},
		{"escapes markup", "Use <b>tags</b> & more", "<p>Use &lt;b&gt;tags&lt;/b&gt; &amp; more</p>"},
		{"quoted", `Add "Kubernetes" to skills`, "<p>Add <em>Kubernetes</em> to skills</p>"},
		{"quoted with entities", `Mention "Tom's & Jerry's" work`, "<p>Mention <em>Tom&#39;s &amp; Jerry&#39;s</em> work</p>"},
		{"two quotes", `Try "Go" and "Rust"`, "<p>Try <em>Go</em> and <em>Rust</em></p>"},
		{"bold section", "2. **Skills to highlight:**", "<h4>Skills to highlight</h4>"},
		{
			"list closes on blank line",
			"* one\n* two\n\nafter",
			"<ul><li>one</li><li>two</li></ul><p>after</p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderHTML(tt.in))
		})
	}
}
