package internal

import (
	"os"

	"github.com/gabriel-vasile/mimetype"
)

// MimeEmpty is reported for zero-byte files, which can never be valid media.
const MimeEmpty = "inode/x-empty"

// mimeByExt maps the extensions we recognize to the mime type they imply.
// Used to decide whether a file's extension lies about its content.
var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".heic": "image/heic",
	".gif":  "image/gif",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".mpg":  "video/mpeg",
	".mts":  "video/mp2t",
	".mkv":  "video/x-matroska",
}

// MimeSniffer implements TypeSniffer with content-based detection.
type MimeSniffer struct{}

func (MimeSniffer) DetectMime(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() == 0 {
		return MimeEmpty, nil
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	return mt.String(), nil
}

func (MimeSniffer) ExtensionFor(mime string) string {
	// Prefer our own table so jpeg maps to .jpg, not .jpeg.
	for ext, m := range mimeByExt {
		if m == mime && ext != ".jpeg" && ext != ".m4v" {
			return ext
		}
	}
	if mt := mimetype.Lookup(mime); mt != nil {
		return mt.Extension()
	}
	return ""
}

// mimeImpliedBy returns the mime type implied by a filename extension, or ""
// when the extension is not recognized.
func mimeImpliedBy(ext string) string {
	return mimeByExt[ext]
}
