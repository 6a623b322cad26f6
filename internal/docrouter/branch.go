package docrouter

import "strings"

// Branch names the service an uploaded object is sent to.
type Branch string

const (
	BranchExtraction  Branch = "extraction"
	BranchOCR         Branch = "ocr"
	BranchUnsupported Branch = "unsupported"
)

type fileKind struct {
	branch   Branch
	mimeType string
}

// Paged documents go to Document AI, plain images to Vision.
var kinds = map[string]fileKind{
	"pdf":  {BranchExtraction, "application/pdf"},
	"tiff": {BranchExtraction, "image/tiff"},
	"gif":  {BranchExtraction, "image/gif"},
	"jpg":  {BranchOCR, "image/jpeg"},
	"jpeg": {BranchOCR, "image/jpeg"},
	"png":  {BranchOCR, "image/png"},
	"bmp":  {BranchOCR, "image/bmp"},
	"webp": {BranchOCR, "image/webp"},
}

// Extension returns the lower-cased text after the last dot of name. A name
// without a dot is its own extension.
func Extension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

// Classify picks the branch for an object name.
func Classify(name string) (Branch, string) {
	ext := Extension(name)
	if k, ok := kinds[ext]; ok {
		return k.branch, ext
	}
	return BranchUnsupported, ext
}

// MimeType is the content type sent along with an extension's objects, or
// "" for unsupported extensions.
func MimeType(ext string) string {
	return kinds[strings.ToLower(ext)].mimeType
}
