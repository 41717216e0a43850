package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Tarih", "Ders", "Durum"},
		Rows: []map[string]string{
			{"Tarih": "04.03.2024", "Ders": "Matematik", "Durum": "Tamamlandı"},
			{"Tarih": "05.03.2024", "Ders": "Fizik", "Durum": "Planlandı"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	content, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Tarih,Ders,Durum", lines[0])
	require.Equal(t, "04.03.2024,Matematik,Tamamlandı", lines[1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	content, err := NewPDFExporter().Render(sampleDataset(), "Etüt Programı")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(content), "%PDF"))
}
