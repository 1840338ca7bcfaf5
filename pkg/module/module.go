package module

import (
	"mime"
	"net/url"
	"path"
	"strings"
)

// MediaType classifies module source text so the emitters know whether
// type stripping applies.
type MediaType string

const (
	MediaTypeJavaScript MediaType = "JavaScript"
	MediaTypeJSX        MediaType = "JSX"
	MediaTypeTypeScript MediaType = "TypeScript"
	MediaTypeTSX        MediaType = "TSX"
	MediaTypeDts        MediaType = "Dts"
	MediaTypeJSON       MediaType = "Json"
	MediaTypeUnknown    MediaType = "Unknown"
)

// Emittable reports whether the media type produces an output file.
// Declaration files and JSON carry no executable payload of their own.
func (m MediaType) Emittable() bool {
	switch m {
	case MediaTypeJavaScript, MediaTypeJSX, MediaTypeTypeScript, MediaTypeTSX:
		return true
	default:
		return false
	}
}

// MediaTypeFromSpecifier infers a media type from the specifier's
// extension, mirroring how resolvers classify fetched modules. Query
// strings and fragments are ignored.
func MediaTypeFromSpecifier(specifier string) MediaType {
	if parsed, err := url.Parse(specifier); err == nil && parsed.Path != "" {
		specifier = parsed.Path
	}
	name := path.Base(specifier)
	if strings.HasSuffix(name, ".d.ts") {
		return MediaTypeDts
	}
	switch path.Ext(name) {
	case ".ts":
		return MediaTypeTypeScript
	case ".tsx":
		return MediaTypeTSX
	case ".js", ".mjs", ".cjs":
		return MediaTypeJavaScript
	case ".jsx":
		return MediaTypeJSX
	case ".json":
		return MediaTypeJSON
	default:
		return MediaTypeUnknown
	}
}

// MediaTypeFromContentType maps a Content-Type header onto a media
// type, falling back to the specifier extension when the header is
// generic or absent.
func MediaTypeFromContentType(contentType, specifier string) MediaType {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return MediaTypeFromSpecifier(specifier)
	}
	switch mt {
	case "application/typescript", "text/typescript", "video/vnd.dlna.mpeg-tts", "video/mp2t":
		return MediaTypeTypeScript
	case "application/javascript", "text/javascript", "application/ecmascript", "text/ecmascript":
		return MediaTypeJavaScript
	case "application/json", "text/json":
		return MediaTypeJSON
	default:
		return MediaTypeFromSpecifier(specifier)
	}
}

// Module is a resolved unit of source text keyed by its absolute
// specifier. Providers return modules by value; the graph owns them
// for the duration of one build.
type Module struct {
	Specifier string
	MediaType MediaType
	Source    string
}
