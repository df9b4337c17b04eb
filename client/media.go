package client

import (
	"context"
	"fmt"
	"io"
)

// MediaFile is a file handed to the API as a parameter value. When a
// param value is a MediaFile the request is encoded as
// multipart/form-data; on non-upload endpoints the file is first sent
// through the media uploader and replaced by its media_id.
type MediaFile struct {
	// Name is the file name reported to the server.
	Name string
	// ContentType is the MIME type; detected by the server when empty.
	ContentType string
	// Data is the file content. Preferred over Reader because it can
	// be re-encoded on retries.
	Data []byte
	// Reader streams the file content when Data is nil. A Reader can
	// only be consumed once, so requests carrying one are not retried
	// with a fresh body.
	Reader io.Reader
}

// MediaUploader uploads a file out of band and returns the media id to
// substitute into the original request. The default implementation
// posts to the upload API family; tests swap in fakes.
type MediaUploader interface {
	Upload(ctx context.Context, file MediaFile) (string, error)
}

// apiUploader is the default MediaUploader. It posts the file to
// media/upload on the upload API family of the same client.
type apiUploader struct {
	c *Client
}

func (u *apiUploader) Upload(ctx context.Context, file MediaFile) (string, error) {
	ep := u.c.Endpoint("upload").Child("media").Child("upload")
	resp, err := u.c.Do(ctx, "POST", ep, Params{"media": file})
	if err != nil {
		return "", fmt.Errorf("media upload: %w", err)
	}
	id := resp.String("media_id_string")
	if id == "" {
		return "", fmt.Errorf("media upload: response carries no media_id_string")
	}
	return id, nil
}

// resolveMedia replaces MediaFile params with uploaded media ids for
// endpoints outside the upload family. Upload-family endpoints keep
// their files and go out as multipart directly, which also keeps the
// default uploader from recursing.
func (c *Client) resolveMedia(ctx context.Context, family string, params Params) (Params, error) {
	if family == "upload" {
		return params, nil
	}

	var out Params
	for k, v := range params {
		var file *MediaFile
		switch f := v.(type) {
		case MediaFile:
			file = &f
		case *MediaFile:
			file = f
		default:
			continue
		}

		id, err := c.uploader.Upload(ctx, *file)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = make(Params, len(params))
			for pk, pv := range params {
				out[pk] = pv
			}
		}
		// statuses/update takes uploaded ids as media_ids.
		if k == "media" {
			delete(out, "media")
			out["media_ids"] = id
		} else {
			out[k] = id
		}
	}

	if out == nil {
		return params, nil
	}
	return out, nil
}
