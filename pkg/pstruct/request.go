package pstruct

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// MaxPartSize is the largest multipart part ReadRequest accepts.
const MaxPartSize = 32 << 20

// ErrPartTooLarge reports a multipart part larger than MaxPartSize.
var ErrPartTooLarge = errors.New("pstruct: part too large")

// FileUpload is the value carried by a multipart file field.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// ParseURLEncoded splits an application/x-www-form-urlencoded body into pairs,
// keeping document order and repeated keys.
func ParseURLEncoded(body string) ([]Pair, error) {
	var pairs []Pair
	for _, segment := range strings.FieldsFunc(body, func(r rune) bool { return r == '&' }) {
		if segment == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(segment, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("pstruct: decode key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("pstruct: decode value for %q: %w", key, err)
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	return pairs, nil
}

// ReadRequest returns the submitted pairs of an HTTP request in document
// order. Urlencoded and multipart bodies are supported; multipart file parts
// become *FileUpload values. The request body is consumed.
func ReadRequest(r *http.Request) ([]Pair, error) {
	if r == nil {
		return nil, errors.New("pstruct: request is nil")
	}
	if r.Body == nil {
		return nil, nil
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	switch mediaType {
	case "multipart/form-data":
		return readMultipart(r)
	case "application/x-www-form-urlencoded", "":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("pstruct: read body: %w", err)
		}
		return ParseURLEncoded(string(body))
	default:
		return nil, fmt.Errorf("pstruct: unsupported content type %q", mediaType)
	}
}

func readMultipart(r *http.Request) ([]Pair, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("pstruct: multipart reader: %w", err)
	}

	var pairs []Pair
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return pairs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("pstruct: next part: %w", err)
		}

		data, err := io.ReadAll(io.LimitReader(part, MaxPartSize+1))
		name := part.FormName()
		if err != nil {
			part.Close()
			return nil, fmt.Errorf("pstruct: read part %q: %w", name, err)
		}
		if len(data) > MaxPartSize {
			part.Close()
			return nil, fmt.Errorf("%w: %q exceeds %d bytes", ErrPartTooLarge, name, MaxPartSize)
		}

		if filename := part.FileName(); filename != "" {
			pairs = append(pairs, Pair{Key: name, Value: &FileUpload{
				Filename:    filename,
				ContentType: part.Header.Get("Content-Type"),
				Size:        int64(len(data)),
				Data:        data,
			}})
		} else {
			pairs = append(pairs, Pair{Key: name, Value: string(data)})
		}
		part.Close()
	}
}
