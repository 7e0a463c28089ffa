package pdf

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Text(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		want    string
		wantErr bool
	}{
		{name: "trims whitespace", body: "\n  Jane Doe\nGo developer \n\n", want: "Jane Doe\nGo developer"},
		{name: "image only", body: "   \n", want: ""},
		{name: "converter failure", err: errors.New("pdftotext missing"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Extractor{convert: func(io.Reader) (string, map[string]string, error) {
				return tt.body, nil, tt.err
			}}
			got, err := e.Text(strings.NewReader("%PDF"))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
