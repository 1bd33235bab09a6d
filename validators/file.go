package validators

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
)

var (
	ErrFileTooLarge      = errors.New("file too large")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrInvalidArchive    = errors.New("invalid zip archive")
	ErrNoHTMLInArchive   = errors.New("no html file in archive")
)

// FileValidator checks an incoming upload and returns the HTML payload
// to host. A .html file is its own payload. For a .zip the payload is
// picked from the archive: an entry named exactly index.html wins,
// otherwise the first .html entry in archive order is used.
func FileValidator(filename string, data []byte) (string, []byte, error) {
	maxSize := viper.GetInt64("upload.max_size")
	if int64(len(data)) > maxSize {
		return "", nil, ErrFileTooLarge
	}

	switch strings.ToLower(path.Ext(filename)) {
	case ".html":
		return filename, data, nil
	case ".zip":
		return htmlFromArchive(data, maxSize)
	default:
		return "", nil, ErrUnsupportedFormat
	}
}

func htmlFromArchive(data []byte, maxSize int64) (string, []byte, error) {
	// Sniff before parsing, the extension alone is easy to spoof
	if !mimetype.Detect(data).Is("application/zip") {
		return "", nil, ErrInvalidArchive
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, ErrInvalidArchive
	}

	var chosen *zip.File

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		if f.Name == "index.html" {
			chosen = f
			break
		}

		if chosen == nil && strings.HasSuffix(strings.ToLower(f.Name), ".html") {
			chosen = f
		}
	}

	if chosen == nil {
		return "", nil, ErrNoHTMLInArchive
	}

	rc, err := chosen.Open()
	if err != nil {
		return "", nil, ErrInvalidArchive
	}
	defer rc.Close()

	// The declared size inside a zip can lie, so cap the read instead
	// of trusting it. Anything decompressing past the limit is treated
	// the same as an oversized direct upload
	payload, err := io.ReadAll(io.LimitReader(rc, maxSize+1))
	if err != nil {
		return "", nil, ErrInvalidArchive
	}

	if int64(len(payload)) > maxSize {
		return "", nil, ErrFileTooLarge
	}

	return path.Base(chosen.Name), payload, nil
}
