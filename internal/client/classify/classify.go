// Package classify maps file names and MIME types onto the fixed category
// taxonomy and resolves categories to browsing sections.
package classify

import (
	"mime"
	"strings"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
	"github.com/gabriel-vasile/mimetype"
)

// Result is the outcome of classifying a single name.
type Result struct {
	Category  models.Category
	Extension string
}

var extensionTable = map[string]models.Category{}

func register(c models.Category, exts ...string) {
	for _, e := range exts {
		extensionTable[e] = c
	}
}

func init() {
	register(models.CategoryDocument,
		"pdf", "doc", "docx", "txt", "xls", "xlsx", "csv", "rtf", "ods", "ppt", "pptx",
		"odp", "odt", "md", "html", "htm", "epub", "pages", "fig", "psd", "ai", "indd",
		"xd", "sketch", "afdesign", "afphoto")
	register(models.CategoryImage,
		"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp", "tif", "tiff", "ico", "heic", "avif")
	register(models.CategoryVideo,
		"mp4", "avi", "mov", "mkv", "webm", "wmv", "flv", "m4v", "3gp", "mpeg", "mpg", "ogv")
	register(models.CategoryAudio,
		"mp3", "wav", "ogg", "flac", "aac", "m4a", "wma", "aiff", "alac", "opus", "oga")
}

// Extension returns the lowercase substring after the final '.', or "" when
// name has no '.' or ends with one.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// Classify derives category and extension from name alone. Unknown or missing
// extensions map to other.
func Classify(name string) Result {
	ext := Extension(name)
	if c, ok := extensionTable[ext]; ok {
		return Result{Category: c, Extension: ext}
	}
	return Result{Category: models.CategoryOther, Extension: ext}
}

// ClassifyWithMIME classifies by extension first and falls back to the
// declared MIME type when the extension is absent or unknown. The returned
// Extension is always the one found in name.
func ClassifyWithMIME(name, mimeType string) Result {
	res := Classify(name)
	if res.Category != models.CategoryOther || mimeType == "" {
		return res
	}
	res.Category = categoryForMIME(mimeType)
	return res
}

func categoryForMIME(mimeType string) models.Category {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return models.CategoryOther
	}

	if mt := mimetype.Lookup(mediaType); mt != nil {
		if c, ok := extensionTable[strings.TrimPrefix(mt.Extension(), ".")]; ok {
			return c
		}
	}

	family, _, _ := strings.Cut(mediaType, "/")
	switch family {
	case "image":
		return models.CategoryImage
	case "video":
		return models.CategoryVideo
	case "audio":
		return models.CategoryAudio
	case "text":
		return models.CategoryDocument
	}
	return models.CategoryOther
}

// Sniff detects the MIME type of a payload from its leading bytes.
func Sniff(head []byte) string {
	return mimetype.Detect(head).String()
}
