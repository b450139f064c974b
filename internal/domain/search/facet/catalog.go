package facet

import (
	"strconv"

	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// Default filter names.
const (
	Starred                 = "starred"
	Tags                    = "tags"
	ContentType             = "contentType"
	CreationDate            = "creationDate"
	Language                = "language"
	NamedEntityPerson       = "namedEntityPerson"
	NamedEntityOrganization = "namedEntityOrganization"
	NamedEntityLocation     = "namedEntityLocation"
	Path                    = "path"
	ExtractionLevel         = "extractionLevel"
	IndexingDate            = "indexingDate"
)

// ContentTypeLabels names the common document media types.
var ContentTypeLabels = map[string]string{
	"application/pdf":    "Portable Document Format (PDF)",
	"application/msword": "Microsoft Word Document",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "Microsoft Word Document",
	"application/vnd.ms-excel": "Microsoft Excel Spreadsheet",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         "Microsoft Excel Spreadsheet",
	"application/vnd.ms-powerpoint":                                             "Microsoft PowerPoint Presentation",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "Microsoft PowerPoint Presentation",
	"application/vnd.ms-outlook":                                                "Microsoft Outlook Message",
	"message/rfc822":                                                            "Email",
	"text/plain":                                                                "Plain Text",
	"text/html":                                                                 "HTML Document",
	"text/csv":                                                                  "Comma-Separated Values",
	"application/json":                                                          "JSON Document",
	"application/zip":                                                           "ZIP Archive",
	"image/jpeg":                                                                "JPEG Image",
	"image/png":                                                                 "PNG Image",
	"image/tiff":                                                                "TIFF Image",
	"audio/mpeg":                                                                "MP3 Audio",
	"video/mp4":                                                                 "MP4 Video",
}

// LanguageLabels names the languages documents are detected in.
var LanguageLabels = map[string]string{
	"ENGLISH":    "English",
	"FRENCH":     "French",
	"SPANISH":    "Spanish",
	"GERMAN":     "German",
	"ITALIAN":    "Italian",
	"PORTUGUESE": "Portuguese",
	"RUSSIAN":    "Russian",
	"CHINESE":    "Chinese",
	"ARABIC":     "Arabic",
	"JAPANESE":   "Japanese",
}

// StarredLabels names the two starred buckets.
var StarredLabels = map[string]string{
	True:  "Starred",
	False: "Not starred",
}

// DefaultDefinitions returns the filters of a document index, in display order.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: Starred, Field: "id", Icon: "star", Kind: KindStarred, Labels: StarredLabels},
		{Name: Tags, Field: "tags", Icon: "tags", MultiValue: true, Kind: KindText},
		{Name: ContentType, Field: "content_type", Icon: "file", MultiValue: true, Kind: KindText, Labels: ContentTypeLabels},
		{Name: CreationDate, Field: "creation_date", Icon: "calendar-alt", Kind: KindDateRange},
		{Name: Language, Field: "language", Icon: "language", Kind: KindText, Labels: LanguageLabels},
		{Name: NamedEntityPerson, Kind: KindNamedEntity, Category: "PERSON", MultiValue: true},
		{Name: NamedEntityOrganization, Kind: KindNamedEntity, Category: "ORGANIZATION", MultiValue: true},
		{Name: NamedEntityLocation, Kind: KindNamedEntity, Category: "LOCATION", MultiValue: true},
		{Name: Path, Field: "dirname", Icon: "hdd", Kind: KindPath},
		{Name: ExtractionLevel, Field: "extraction_level", Icon: "paperclip", Kind: KindText, Labeler: extractionLevelLabel},
		{Name: IndexingDate, Field: "extraction_date", Icon: "calendar-plus", Kind: KindDate, DateLayout: "2006-01"},
	}
}

// DefaultRegistry returns a registry holding DefaultDefinitions.
func DefaultRegistry() Registry {
	r, err := NewRegistry(DefaultDefinitions()...)
	if err != nil {
		panic(err)
	}
	return r
}

func extractionLevelLabel(b result.Bucket) string {
	level, err := strconv.Atoi(b.Key)
	if err != nil {
		return b.Key
	}
	switch level {
	case 0:
		return "File on disk"
	case 1:
		return "1st level"
	case 2:
		return "2nd level"
	case 3:
		return "3rd level"
	}
	return strconv.Itoa(level) + "th level"
}
