// Package fixext repairs media files whose content does not match their
// filename extension. Takeout exports contain these routinely (a PNG saved
// as .jpg by an app, HEIC behind a .jpg name) and exiftool refuses to
// write them until the name is honest.
package fixext

import (
	"fmt"
	"strings"

	"github.com/barasher/go-exiftool"
	"github.com/h2non/filetype"
)

// canonicalExt folds the aliases the probes emit onto the extension
// spelling we rename files to.
var canonicalExt = map[string]string{
	"jpeg": "jpg",
	"tif":  "tiff",
	"qt":   "mov",
	"heif": "heic",
}

// Detector probes a file's real content type. The primary probe is a
// long-lived exiftool process (FileTypeExtension tag); when that fails,
// magic-byte sniffing is the fallback.
type Detector struct {
	et *exiftool.Exiftool
}

// NewDetector starts the probe process. The detector must be closed.
func NewDetector(bin string) (*Detector, error) {
	et, err := exiftool.NewExiftool(exiftool.SetExiftoolBinaryPath(bin))
	if err != nil {
		return nil, fmt.Errorf("start probe process: %w", err)
	}
	return &Detector{et: et}, nil
}

// Close shuts the probe process down.
func (d *Detector) Close() error {
	if d.et == nil {
		return nil
	}
	return d.et.Close()
}

// Detect returns the canonical extension the file's content implies,
// without a leading dot. An undetectable file is an error, not a guess.
func (d *Detector) Detect(path string) (string, error) {
	if ext, err := d.probe(path); err == nil {
		return ext, nil
	}

	t, err := filetype.MatchFile(path)
	if err != nil {
		return "", fmt.Errorf("sniff %s: %w", path, err)
	}
	if t == filetype.Unknown {
		return "", fmt.Errorf("cannot determine content type of %s", path)
	}
	return Canonical(t.Extension), nil
}

func (d *Detector) probe(path string) (string, error) {
	if d.et == nil {
		return "", fmt.Errorf("no probe process")
	}
	fms := d.et.ExtractMetadata(path)
	if len(fms) == 0 {
		return "", fmt.Errorf("no probe result for %s", path)
	}
	if fms[0].Err != nil {
		return "", fms[0].Err
	}
	ext, err := fms[0].GetString("FileTypeExtension")
	if err != nil {
		return "", err
	}
	return Canonical(ext), nil
}

// Canonical lowercases an extension and folds known aliases.
func Canonical(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if c, ok := canonicalExt[ext]; ok {
		return c
	}
	return ext
}
