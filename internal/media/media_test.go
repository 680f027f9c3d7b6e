package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestFileType(t *testing.T) {
	cases := map[string]string{
		"image/png":          "image",
		"video/mp4":          "video",
		"audio/mpeg":         "audio",
		"application/pdf":    "document",
		"application/msword": "document",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         "spreadsheet",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation": "presentation",
		"text/plain":               "text",
		"application/json":         "text",
		"application/zip":          "archive",
		"application/x-tar":        "archive",
		"application/octet-stream": "other",
	}
	for mimeType, want := range cases {
		assert.Equal(t, want, FileType(mimeType), mimeType)
	}
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectMIME("report.PDF", nil))
	assert.Equal(t, "text/plain", DetectMIME("notes.txt", nil))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	assert.Equal(t, "image/png", DetectMIME("noext", &buf))

	assert.Equal(t, DefaultMIME, DetectMIME("noext", nil))
}

func TestDisplayType(t *testing.T) {
	assert.Equal(t, "document", DisplayType("spreadsheet", "a.xlsx"))
	assert.Equal(t, "code", DisplayType("text", "main.go"))
	assert.Equal(t, "document", DisplayType("text", "readme.txt"))
	assert.Equal(t, "image", DisplayType("image", "a.png"))
}

func TestIsTextPreview(t *testing.T) {
	assert.True(t, IsTextPreview("config.YAML"))
	assert.True(t, IsTextPreview("a.md"))
	assert.False(t, IsTextPreview("photo.jpg"))
	assert.False(t, IsTextPreview("Makefile"))
}

func TestDecodeText(t *testing.T) {
	text, ok := DecodeText([]byte("héllo"))
	assert.True(t, ok)
	assert.Equal(t, "héllo", text)

	gbk, err := simplifiedchinese.GBK.NewEncoder().String("中文内容")
	require.NoError(t, err)
	text, ok = DecodeText([]byte(gbk))
	assert.True(t, ok)
	assert.Equal(t, "中文内容", text)

	_, ok = DecodeText([]byte{0xff, 0xff, 0xff})
	assert.False(t, ok)
}

func TestThumbnailFitsBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 800, 400))
	for x := 0; x < 800; x++ {
		img.Set(x, 10, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	out, err := Thumbnail(&buf, 200, 200)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, decoded.Bounds().Dx())
	assert.Equal(t, 100, decoded.Bounds().Dy())
}

func TestThumbnailKeepsSmallImages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 50, 30))))
	out, err := Thumbnail(&buf, 200, 200)
	require.NoError(t, err)
	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 50, decoded.Bounds().Dx())
	assert.Equal(t, 30, decoded.Bounds().Dy())
}

func TestThumbnailRejectsNonImage(t *testing.T) {
	_, err := Thumbnail(strings.NewReader("not an image"), 200, 200)
	assert.Error(t, err)
}
