package service

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/errs"
	"CloudVault/internal/repo"
	"CloudVault/model"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadIntoTopLevelFolderRejected(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	docs := mustFolder(t, ctx, alice.ID, "Docs", nil)

	_, err := UploadFile(ctx, alice.ID, docs.ID, "report.pdf", 4, strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)

	year := mustFolder(t, ctx, alice.ID, "2024", &docs.ID)
	file, err := UploadFile(ctx, alice.ID, year.ID, "report.pdf", 4, strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, model.TypeDocument, file.Type)
	assert.Equal(t, "application/pdf", file.MimeType)
	assert.Equal(t, "report.pdf", file.Name)
	assert.NotEqual(t, "report.pdf", file.StoredName)
	assert.Equal(t, ".pdf", path.Ext(file.StoredName))
	assert.Equal(t, fmt.Sprintf("%d/%s", alice.ID, file.StoredName), file.Path)
	assert.True(t, blobExists(t, ctx, file.Path))
	assert.Empty(t, file.ThumbnailPath)
}

func TestUploadValidation(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")

	_, err := UploadFile(ctx, alice.ID, 0, "a.txt", 1, strings.NewReader("a"))
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = UploadFile(ctx, alice.ID, work.ID, "", 1, strings.NewReader("a"))
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = UploadFile(ctx, alice.ID, work.ID, "a.txt", 1, nil)
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = UploadFile(ctx, alice.ID, 9999, "a.txt", 1, strings.NewReader("a"))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUploadDuplicateNameConflict(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	mustUpload(t, ctx, alice.ID, work.ID, "notes.txt", "v1")

	_, err := UploadFile(ctx, alice.ID, work.ID, "notes.txt", 2, strings.NewReader("v2"))
	assert.ErrorIs(t, err, errs.ErrConflict)

	files, err := ListFiles(ctx, alice.ID, &work.ID)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestUploadImageCreatesThumbnail(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	work := mustWorkFolder(t, ctx, alice.ID, "Pictures")

	img := image.NewRGBA(image.Rect(0, 0, 400, 100))
	for x := 0; x < 400; x++ {
		img.Set(x, 50, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	file, err := UploadFile(ctx, alice.ID, work.ID, "banner.png", int64(buf.Len()), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, model.TypeImage, file.Type)
	require.NotEmpty(t, file.ThumbnailPath)
	assert.True(t, blobExists(t, ctx, file.ThumbnailPath))

	rc, _, err := OpenThumbnail(ctx, alice.ID, file.ID)
	require.NoError(t, err)
	thumb, _, err := image.Decode(strings.NewReader(readAll(t, rc)))
	require.NoError(t, err)
	assert.Equal(t, 200, thumb.Bounds().Dx())
	assert.Equal(t, 50, thumb.Bounds().Dy())
}

func TestUploadBrokenImageSkipsThumbnail(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	work := mustWorkFolder(t, ctx, alice.ID, "Pictures")

	file := mustUpload(t, ctx, alice.ID, work.ID, "broken.png", "not really a png")
	assert.Empty(t, file.ThumbnailPath)
	_, _, err := OpenThumbnail(ctx, alice.ID, file.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRenameAndMoveFile(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	docs := mustFolder(t, ctx, alice.ID, "Docs", nil)
	a := mustFolder(t, ctx, alice.ID, "A", &docs.ID)
	b := mustFolder(t, ctx, alice.ID, "B", &docs.ID)
	one := mustUpload(t, ctx, alice.ID, a.ID, "one.txt", "1")
	mustUpload(t, ctx, alice.ID, a.ID, "two.txt", "2")
	mustUpload(t, ctx, alice.ID, b.ID, "one.txt", "other")

	_, err := RenameFile(ctx, alice.ID, one.ID, "two.txt")
	assert.ErrorIs(t, err, errs.ErrConflict)

	_, err = MoveFile(ctx, alice.ID, one.ID, b.ID)
	assert.ErrorIs(t, err, errs.ErrConflict)
	_, err = MoveFile(ctx, alice.ID, one.ID, docs.ID)
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)

	renamed, err := RenameFile(ctx, alice.ID, one.ID, "uno.txt")
	require.NoError(t, err)
	assert.Equal(t, "uno.txt", renamed.Name)

	moved, err := MoveFile(ctx, alice.ID, one.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, moved.FolderID)
}

func TestBatchMoveFilesConflictListsNames(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	docs := mustFolder(t, ctx, alice.ID, "Docs", nil)
	a := mustFolder(t, ctx, alice.ID, "A", &docs.ID)
	b := mustFolder(t, ctx, alice.ID, "B", &docs.ID)
	x := mustUpload(t, ctx, alice.ID, a.ID, "x.txt", "x")
	y := mustUpload(t, ctx, alice.ID, a.ID, "y.txt", "y")
	mustUpload(t, ctx, alice.ID, b.ID, "y.txt", "other y")

	err := BatchMoveFiles(ctx, alice.ID, []uint64{x.ID, y.ID}, b.ID)
	require.ErrorIs(t, err, errs.ErrConflict)
	assert.Contains(t, errs.Message(err), "y.txt")

	// nothing moved
	files, err := ListFiles(ctx, alice.ID, &a.ID)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	err = BatchMoveFiles(ctx, alice.ID, []uint64{x.ID, 9999}, b.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	err = BatchMoveFiles(ctx, alice.ID, nil, b.ID)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestDeleteFileTwiceNotFound(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	file := mustUpload(t, ctx, alice.ID, work.ID, "a.txt", "hello")

	require.NoError(t, DeleteFile(ctx, alice.ID, file.ID))
	assert.False(t, blobExists(t, ctx, file.Path))
	assert.ErrorIs(t, DeleteFile(ctx, alice.ID, file.ID), errs.ErrNotFound)

	items, err := ListTrash(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/Docs/work/a.txt", items[0].OriginalPath)
	assert.Equal(t, int64(5), items[0].Size)
}

func TestBatchDeleteIsAllOrNothing(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	bob := mustUser(t, ctx, "bob")
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	bobWork := mustWorkFolder(t, ctx, bob.ID, "Docs")
	mine := mustUpload(t, ctx, alice.ID, work.ID, "a.txt", "a")
	theirs := mustUpload(t, ctx, bob.ID, bobWork.ID, "b.txt", "b")

	err := BatchDeleteFiles(ctx, alice.ID, []uint64{mine.ID, theirs.ID})
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = GetFile(ctx, alice.ID, mine.ID)
	assert.NoError(t, err)
	assert.True(t, blobExists(t, ctx, theirs.Path))
}

func TestBatchDeleteRollsBackWhenFolderMissing(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	file := mustUpload(t, ctx, alice.ID, work.ID, "a.txt", "a")
	require.NoError(t, repo.Db.Exec("DELETE FROM folders WHERE id = ?", work.ID).Error)

	err := BatchDeleteFiles(ctx, alice.ID, []uint64{file.ID})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = GetFile(ctx, alice.ID, file.ID)
	assert.NoError(t, err)
	assert.True(t, blobExists(t, ctx, file.Path))
	var trashed int64
	require.NoError(t, repo.Db.Model(&model.TrashItem{}).Count(&trashed).Error)
	assert.Zero(t, trashed)
}

func TestUpdateFileTags(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	file := mustUpload(t, ctx, alice.ID, work.ID, "a.txt", "a")

	updated, err := UpdateFileTags(ctx, alice.ID, file.ID, []string{" work ", "", "urgent", "work"})
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "urgent"}, updated.TagList())

	reloaded, err := GetFile(ctx, alice.ID, file.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "urgent"}, reloaded.TagList())
}

func TestSearchFiles(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	mustUpload(t, ctx, alice.ID, work.ID, "report.pdf", "%PDF")
	mustUpload(t, ctx, alice.ID, work.ID, "budget.xlsx", "xlsx")
	mustUpload(t, ctx, alice.ID, work.ID, "50%_off.txt", "sale")
	mustUpload(t, ctx, alice.ID, work.ID, "500 off.txt", "sale")
	mustUpload(t, ctx, alice.ID, work.ID, "song.mp3", "ID3")

	res, err := SearchFiles(ctx, alice.ID, dto.SearchFilesRequest{Type: "document"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Total)

	res, err = SearchFiles(ctx, alice.ID, dto.SearchFilesRequest{Query: "50%_"})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "50%_off.txt", res.Files[0].Name)

	res, err = SearchFiles(ctx, alice.ID, dto.SearchFilesRequest{SortBy: "name", SortOrder: "asc", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Total)
	require.Len(t, res.Files, 2)
	assert.Equal(t, "50%_off.txt", res.Files[0].Name)
	assert.Equal(t, "500 off.txt", res.Files[1].Name)

	bob := mustUser(t, ctx, "bob")
	res, err = SearchFiles(ctx, bob.ID, dto.SearchFilesRequest{})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}

func TestPreviewFile(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	txt := mustUpload(t, ctx, alice.ID, work.ID, "notes.md", "# hello")
	bin := mustUpload(t, ctx, alice.ID, work.ID, "blob.bin", "\x00\x01")

	p, err := PreviewFile(ctx, alice.ID, txt.ID)
	require.NoError(t, err)
	assert.True(t, p.IsText)
	assert.Equal(t, "# hello", p.Text)

	p, err = PreviewFile(ctx, alice.ID, bin.ID)
	require.NoError(t, err)
	assert.False(t, p.IsText)
	assert.Equal(t, "\x00\x01", readAll(t, p.Reader))
}

func TestOpenFileMissingBlob(t *testing.T) {
	ctx := setupService(t)
	alice := mustUser(t, ctx, "alice")
	work := mustWorkFolder(t, ctx, alice.ID, "Docs")
	file := mustUpload(t, ctx, alice.ID, work.ID, "a.txt", "hello")

	_, rc, info, err := OpenFile(ctx, alice.ID, file.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, "hello", readAll(t, rc))

	removeBlobs(ctx, file.Path)
	_, _, _, err = OpenFile(ctx, alice.ID, file.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
