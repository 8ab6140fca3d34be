package services

import (
	"bytes"
	"context"
	"errors"
	"net/url"
)

// File is an upload held in memory between the form and the storage provider.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

func (f File) Size() int64 {
	return int64(len(f.Content))
}

// Uploader stores file bytes and can take them back.
type Uploader interface {
	Upload(ctx context.Context, file File) (string, error)
	Discard(ctx context.Context, fileURL string) error
}

// FileService uploads through the backend's file endpoint.
type FileService struct {
	client Requester
}

var _ Uploader = (*FileService)(nil)

func NewFileService(client Requester) *FileService {
	return &FileService{client: client}
}

func (s *FileService) Upload(ctx context.Context, file File) (string, error) {
	var res struct {
		URL string `json:"url"`
	}
	err := s.client.Upload(ctx, "/files/upload", file.Name, file.ContentType, bytes.NewReader(file.Content), nil, &res)
	if err != nil {
		return "", err
	}
	if res.URL == "" {
		return "", errors.New("upload response has no url")
	}
	return res.URL, nil
}

func (s *FileService) Discard(ctx context.Context, fileURL string) error {
	return s.client.Delete(ctx, "/files", url.Values{"url": {fileURL}}, nil)
}
