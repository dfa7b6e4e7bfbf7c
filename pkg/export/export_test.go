package export

import (
	"bytes"
	"encoding/csv"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterQuoting(t *testing.T) {
	exporter := NewCSVExporter()
	data := Dataset{
		Headers: []string{"email", "note"},
		Rows: []map[string]string{
			{"email": "a@school.org", "note": `he said "hi", twice`},
		},
	}

	payload, err := exporter.Render(data)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"email", "note"}, records[0])
	assert.Equal(t, `he said "hi", twice`, records[1][1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	data := Dataset{
		Title:   "student accounts",
		Headers: []string{"email", "first_name"},
		Rows:    []map[string]string{{"email": "a@school.org", "first_name": "Ada"}},
	}

	payload, err := exporter.Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestPDFExporterRenderPoster(t *testing.T) {
	qr := &bytes.Buffer{}
	require.NoError(t, png.Encode(qr, image.NewRGBA(image.Rect(0, 0, 8, 8))))

	payload, err := NewPDFExporter().RenderPoster(Poster{
		Heading:    "Student self-registration",
		SchoolName: "Acme School",
		URL:        "https://example.org/register/abc",
		ExpiresAt:  "2025-09-01",
		Steps:      []string{"Scan the code", "Fill in your details"},
		QRPNG:      qr.Bytes(),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))

	_, err = NewPDFExporter().RenderPoster(Poster{})
	assert.Error(t, err)
}
