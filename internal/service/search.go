package service

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/errs"
	"CloudVault/internal/repo"
	"CloudVault/model"
	"context"
	"strings"
)

const maxSearchLimit = 100

// searchBuckets expands a client side type filter into stored buckets.
func searchBuckets(fileType string) []string {
	switch strings.ToLower(strings.TrimSpace(fileType)) {
	case "", "all":
		return nil
	case "document":
		return []string{model.TypeDocument, model.TypeSpreadsheet, model.TypePresentation, model.TypeText}
	case "code":
		return []string{model.TypeText}
	default:
		return []string{strings.ToLower(fileType)}
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

// SearchFiles searches files by name.
func SearchFiles(ctx context.Context, userID uint64, req dto.SearchFilesRequest) (*dto.SearchResult, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Limit > maxSearchLimit {
		req.Limit = maxSearchLimit
	}
	fileType := req.Type
	if fileType == "" {
		fileType = req.FileType
	}

	query := repo.Db.WithContext(ctx).Model(&model.File{}).Where("user_id = ?", userID)
	if q := strings.TrimSpace(req.Query); q != "" {
		query = query.Where("name LIKE ? ESCAPE '!'", "%"+escapeLike(q)+"%")
	}
	if buckets := searchBuckets(fileType); buckets != nil {
		query = query.Where("type IN ?", buckets)
	}
	if req.FolderID != nil && *req.FolderID != 0 {
		query = query.Where("folder_id = ?", *req.FolderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}

	orderBy := sanitizeSortBy(req.SortBy)
	if orderBy == "" {
		orderBy = "uploaded_at"
	}
	order := orderBy + " " + sortDirection(req.SortOrder) + ", id DESC"

	var files []model.File
	offset := (req.Page - 1) * req.Limit
	if err := query.Order(order).Offset(offset).Limit(req.Limit).Find(&files).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	return &dto.SearchResult{
		Files: dto.NewFileViews(files),
		Total: total,
		Page:  req.Page,
		Limit: req.Limit,
	}, nil
}
