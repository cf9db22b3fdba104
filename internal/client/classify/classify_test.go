package classify

import (
	"testing"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Result
	}{
		{"pdf", "report.pdf", Result{models.CategoryDocument, "pdf"}},
		{"uppercase", "Holiday.JPG", Result{models.CategoryImage, "jpg"}},
		{"last dot wins", "archive.tar.mp4", Result{models.CategoryVideo, "mp4"}},
		{"audio", "song.flac", Result{models.CategoryAudio, "flac"}},
		{"unknown", "data.xyz", Result{models.CategoryOther, "xyz"}},
		{"no extension", "Makefile", Result{models.CategoryOther, ""}},
		{"trailing dot", "weird.", Result{models.CategoryOther, ""}},
		{"dot file", ".bashrc", Result{models.CategoryOther, "bashrc"}},
		{"empty", "", Result{models.CategoryOther, ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestClassify_DeterministicPerExtension(t *testing.T) {
	for _, n := range []string{"a.docx", "b.DOCX", "c.d.docx"} {
		assert.Equal(t, Classify("x.docx").Category, Classify(n).Category, n)
	}
	assert.Equal(t, Classify("photo.png"), Classify("photo.png"))
}

func TestClassifyWithMIME(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		mimeType string
		want     models.Category
	}{
		{"extension wins", "clip.mp4", "image/png", models.CategoryVideo},
		{"canonical extension", "blob", "application/pdf", models.CategoryDocument},
		{"image family", "scan", "image/x-unknown-format", models.CategoryImage},
		{"video family", "stream", "video/x-custom", models.CategoryVideo},
		{"audio family", "voice", "audio/x-custom", models.CategoryAudio},
		{"text family", "readme", "text/x-custom", models.CategoryDocument},
		{"with params", "page", "text/plain; charset=utf-8", models.CategoryDocument},
		{"unparseable", "thing", "not a mime", models.CategoryOther},
		{"empty mime", "thing", "", models.CategoryOther},
		{"binary", "thing", "application/octet-stream", models.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ClassifyWithMIME(tt.file, tt.mimeType).Category)
		})
	}
}

func TestSniff(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	assert.Equal(t, "image/png", Sniff(png))
	assert.Equal(t, "application/pdf", Sniff([]byte("%PDF-1.7\n")))
}

func TestRouteFor(t *testing.T) {
	assert.Equal(t, SectionDocuments, RouteFor(models.CategoryDocument))
	assert.Equal(t, SectionImages, RouteFor(models.CategoryImage))
	assert.Equal(t, SectionMedia, RouteFor(models.CategoryVideo))
	assert.Equal(t, SectionMedia, RouteFor(models.CategoryAudio))
	assert.Equal(t, SectionOthers, RouteFor(models.CategoryOther))
}

func TestSection_CategoriesInverse(t *testing.T) {
	for _, c := range models.Categories {
		assert.Contains(t, RouteFor(c).Categories(), c)
	}
	assert.Equal(t, []models.Category{models.CategoryVideo, models.CategoryAudio}, SectionMedia.Categories())
	assert.Nil(t, Section("bogus").Categories())
}

func TestParseSection(t *testing.T) {
	s, err := ParseSection("media")
	require.NoError(t, err)
	require.Equal(t, SectionMedia, s)

	_, err = ParseSection("video")
	require.Error(t, err)
}

func TestSection_Path(t *testing.T) {
	assert.Equal(t, "/images", SectionImages.Path(""))
	assert.Equal(t, "/media?query=my+song", SectionMedia.Path("my song"))
}

func TestLabelAndIcon(t *testing.T) {
	for _, c := range models.Categories {
		assert.NotEmpty(t, Label(c))
		assert.NotEmpty(t, Icon(c))
	}
	assert.Equal(t, "Others", Label("bogus"))
	assert.Equal(t, "/assets/icons/others.svg", Icon("bogus"))
}
