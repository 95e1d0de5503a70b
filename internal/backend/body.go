package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"

	"buyback-pos/internal/models"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend validates prices and weights as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyJSON
	BodyMultipart
)

// Body is the request payload. The kind is picked per call and the encoder
// sets the matching Content-Type, so no call site touches headers.
type Body struct {
	Kind  BodyKind
	Value any
	Form  *Form
}

func JSON(v any) Body { return Body{Kind: BodyJSON, Value: v} }

func Multipart(f *Form) Body { return Body{Kind: BodyMultipart, Form: f} }

// Form is an ordered multipart form.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field  string
	upload *models.Upload
}

func NewForm() *Form { return &Form{} }

func (f *Form) Set(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// File attaches an upload; a nil upload is skipped.
func (f *Form) File(field string, up *models.Upload) *Form {
	if up != nil && len(up.Data) > 0 {
		f.files = append(f.files, formFile{field: field, upload: up})
	}
	return f
}

func (b Body) encode() (io.Reader, string, error) {
	switch b.Kind {
	case BodyNone:
		return nil, "", nil
	case BodyJSON:
		raw, err := json.Marshal(b.Value)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(raw), "application/json", nil
	case BodyMultipart:
		return b.Form.encode()
	}
	return nil, "", fmt.Errorf("unknown body kind %d", b.Kind)
}

func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if f != nil {
		for _, field := range f.fields {
			if err := w.WriteField(field.name, field.value); err != nil {
				return nil, "", err
			}
		}
		for _, file := range f.files {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
				escapeQuotes(file.field), escapeQuotes(file.upload.Filename)))
			contentType := file.upload.ContentType
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			h.Set("Content-Type", contentType)

			part, err := w.CreatePart(h)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(file.upload.Data); err != nil {
				return nil, "", err
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '"' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
