package qrlogin

import (
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// PNGDataURIPrefix is the prefix every Code.Image carries.
const PNGDataURIPrefix = "data:image/png;base64,"

// Code is a scannable login code ready for display.
type Code struct {
	Image string // data URI
	URL   string // encoded payload, empty when the remote only sent an image
}

// PNG returns the decoded image bytes.
func (c Code) PNG() ([]byte, error) {
	_, payload, ok := strings.Cut(c.Image, ";base64,")
	if !ok {
		return nil, fmt.Errorf("code image is not a base64 data URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode code image: %w", err)
	}
	return data, nil
}

// CodeSource is a render-code reply resolved into one of PreEncoded or RawURL.
type CodeSource interface {
	codeSource()
}

// PreEncoded is an image the remote already rendered. URL is kept when the
// remote sent it alongside.
type PreEncoded struct {
	Image string
	URL   string
}

// RawURL is a payload that must be encoded locally.
type RawURL struct {
	URL string
}

func (PreEncoded) codeSource() {}
func (RawURL) codeSource()     {}

// ResolveCodeSource picks the preferred form of a render-code reply.
func ResolveCodeSource(reply CodeReply) (CodeSource, error) {
	image := strings.TrimSpace(reply.Image)
	url := strings.TrimSpace(reply.URL)
	switch {
	case image != "":
		return PreEncoded{Image: image, URL: url}, nil
	case url != "":
		return RawURL{URL: url}, nil
	default:
		return nil, fmt.Errorf("%w: reply carries neither qrimg nor qrurl", ErrCodeRender)
	}
}

// BuildCode turns a resolved source into a displayable Code, encoding raw
// URLs as a PNG of the given pixel size.
func BuildCode(src CodeSource, size int) (Code, error) {
	switch s := src.(type) {
	case PreEncoded:
		return Code{Image: normalizeImage(s.Image), URL: s.URL}, nil
	case RawURL:
		png, err := qrcode.Encode(s.URL, qrcode.Medium, size)
		if err != nil {
			return Code{}, fmt.Errorf("%w: encode qrurl: %w", ErrCodeRender, err)
		}
		return Code{
			Image: PNGDataURIPrefix + base64.StdEncoding.EncodeToString(png),
			URL:   s.URL,
		}, nil
	default:
		return Code{}, fmt.Errorf("%w: unsupported code source %T", ErrCodeRender, src)
	}
}

// normalizeImage adds the PNG data URI prefix to bare base64 payloads.
func normalizeImage(image string) string {
	if strings.HasPrefix(image, "data:") {
		return image
	}
	return PNGDataURIPrefix + image
}
