package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

type uploadResp struct {
	StorageID string `json:"storageId"`
	Error     string `json:"error"`
}

type resolveResp struct {
	URL *string `json:"url"`
}

// Remote talks to an external object store over HTTP. Uploads are a
// multipart POST to UploadEndpoint; resolution is a GET on ResolveEndpoint with a
// storageId query parameter.
type Remote struct {
	UploadEndpoint  string
	ResolveEndpoint string
	Token           string
	client          *http.Client
}

// NewRemote builds a Remote; a nil client gets a 60s default.
func NewRemote(uploadURL, resolveURL, token string, client *http.Client) (*Remote, error) {
	if uploadURL == "" || resolveURL == "" {
		return nil, errors.New("remote store requires upload_url and resolve_url")
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Remote{UploadEndpoint: uploadURL, ResolveEndpoint: resolveURL, Token: token, client: client}, nil
}

func (r *Remote) Upload(ctx context.Context, p Payload) (Handle, error) {
	if err := validatePayload(p); err != nil {
		return "", fmt.Errorf("remote upload: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, p.Name))
	header.Set("Content-Type", p.MIMEType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(p.Data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.UploadEndpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("remote upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("remote upload: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	var data uploadResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("remote upload: decode response: %w", err)
	}
	if data.StorageID == "" {
		return "", fmt.Errorf("remote upload: no storage id returned: %s", data.Error)
	}
	return Handle(data.StorageID), nil
}

func (r *Remote) ResolveURL(ctx context.Context, h Handle) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.ResolveEndpoint, nil)
	if err != nil {
		return "", err
	}
	q := req.URL.Query()
	q.Set("storageId", string(h))
	req.URL.RawQuery = q.Encode()
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("resolve url: status %d", resp.StatusCode)
	}
	var data resolveResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("resolve url: decode response: %w", err)
	}
	if data.URL == nil {
		return "", nil
	}
	return *data.URL, nil
}

func (r *Remote) authorize(req *http.Request) {
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}
}
