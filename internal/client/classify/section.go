package classify

import (
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/models"
)

// Section is a browsing route. The media section groups video and audio.
type Section string

const (
	SectionDocuments Section = "documents"
	SectionImages    Section = "images"
	SectionMedia     Section = "media"
	SectionOthers    Section = "others"
)

// Sections lists the browsing routes in navigation order.
var Sections = []Section{SectionDocuments, SectionImages, SectionMedia, SectionOthers}

// RouteFor resolves a category to the section it is browsed under.
func RouteFor(c models.Category) Section {
	switch c {
	case models.CategoryDocument:
		return SectionDocuments
	case models.CategoryImage:
		return SectionImages
	case models.CategoryVideo, models.CategoryAudio:
		return SectionMedia
	default:
		return SectionOthers
	}
}

// Categories returns the categories browsed under s.
func (s Section) Categories() []models.Category {
	switch s {
	case SectionDocuments:
		return []models.Category{models.CategoryDocument}
	case SectionImages:
		return []models.Category{models.CategoryImage}
	case SectionMedia:
		return []models.Category{models.CategoryVideo, models.CategoryAudio}
	case SectionOthers:
		return []models.Category{models.CategoryOther}
	}
	return nil
}

// Path renders the navigation location of s, carrying query when non-empty.
func (s Section) Path(query string) string {
	if query == "" {
		return "/" + string(s)
	}
	return "/" + string(s) + "?query=" + url.QueryEscape(query)
}

// ParseSection accepts a route name such as "media".
func ParseSection(s string) (Section, error) {
	for _, sec := range Sections {
		if string(sec) == s {
			return sec, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", s)
}

var labels = map[models.Category]string{
	models.CategoryDocument: "Documents",
	models.CategoryImage:    "Images",
	models.CategoryVideo:    "Video",
	models.CategoryAudio:    "Audio",
	models.CategoryOther:    "Others",
}

var icons = map[models.Category]string{
	models.CategoryDocument: "/assets/icons/documents.svg",
	models.CategoryImage:    "/assets/icons/images.svg",
	models.CategoryVideo:    "/assets/icons/video.svg",
	models.CategoryAudio:    "/assets/icons/video.svg",
	models.CategoryOther:    "/assets/icons/others.svg",
}

// Label returns the display label of c.
func Label(c models.Category) string {
	if l, ok := labels[c]; ok {
		return l
	}
	return labels[models.CategoryOther]
}

// Icon returns the icon asset of c.
func Icon(c models.Category) string {
	if i, ok := icons[c]; ok {
		return i
	}
	return icons[models.CategoryOther]
}
