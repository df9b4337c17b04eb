package client

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
)

// MultipartBody is a multipart/form-data request body. It is built by
// the request factory when call params carry MediaFile values.
type MultipartBody struct {
	// Fields are simple key-value form fields.
	Fields map[string]string
	// Files are file upload fields.
	Files []FileField
}

// FileField is one file upload field of a multipart body.
type FileField struct {
	// FieldName is the form field name (e.g. "media").
	FieldName string
	// File is the uploaded file.
	File MediaFile
}

// encode builds the multipart body and returns the reader and
// content-type header. Files backed by a Reader rather than Data can
// only be encoded once; retried requests must use Data.
func (m *MultipartBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	for _, f := range m.Files {
		name := f.File.Name
		if name == "" {
			name = "media"
		}

		var part io.Writer
		var err error
		if f.File.ContentType != "" {
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition",
				`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(name)+`"`)
			header.Set("Content-Type", f.File.ContentType)
			part, err = w.CreatePart(header)
		} else {
			part, err = w.CreateFormFile(f.FieldName, name)
		}
		if err != nil {
			return nil, "", err
		}

		if f.File.Data != nil {
			if _, err := part.Write(f.File.Data); err != nil {
				return nil, "", err
			}
		} else if f.File.Reader != nil {
			if _, err := io.Copy(part, f.File.Reader); err != nil {
				return nil, "", err
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

// escapeQuotes replaces special characters in header values.
func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
