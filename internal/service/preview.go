package service

import (
	"CloudVault/config"
	"CloudVault/internal/errs"
	"CloudVault/internal/media"
	"CloudVault/model"
	"bytes"
	"context"
	"io"
)

// Preview is either decoded text or a raw stream to send inline.
type Preview struct {
	File *model.File

	IsText bool
	Text   string

	Reader      io.ReadCloser
	Size        int64
	ContentType string
}

func buildPreview(ctx context.Context, file *model.File) (*Preview, error) {
	rc, info, err := openBlob(ctx, file.Path)
	if err != nil {
		return nil, err
	}
	contentType := file.MimeType
	if contentType == "" {
		contentType = media.DefaultMIME
	}
	p := &Preview{File: file, Reader: rc, Size: info.Size, ContentType: contentType}

	limit := config.AppConfig.PreviewMaxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	if !media.IsTextPreview(file.Name) || info.Size > limit {
		return p, nil
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit))
	_ = rc.Close()
	if err != nil {
		return nil, errs.Storage("read preview", err)
	}
	if text, ok := media.DecodeText(data); ok {
		return &Preview{File: file, IsText: true, Text: text}, nil
	}
	p.Reader = io.NopCloser(bytes.NewReader(data))
	p.Size = int64(len(data))
	return p, nil
}
