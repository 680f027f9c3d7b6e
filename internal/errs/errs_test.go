package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("folder not found")))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("wrap: %w", Conflict("dup"))))
	assert.Equal(t, KindNotFound, KindOf(gorm.ErrRecordNotFound))
	assert.Equal(t, KindConflict, KindOf(gorm.ErrDuplicatedKey))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestIsSentinel(t *testing.T) {
	err := Expired("share expired")
	assert.ErrorIs(t, err, ErrExpired)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:       http.StatusBadRequest,
		KindInvalidOperation: http.StatusBadRequest,
		KindUnauthenticated:  http.StatusUnauthorized,
		KindAuthorization:    http.StatusForbidden,
		KindLimitReached:     http.StatusForbidden,
		KindNotFound:         http.StatusNotFound,
		KindConflict:         http.StatusConflict,
		KindExpired:          http.StatusGone,
		KindStorage:          http.StatusInternalServerError,
		KindInternal:         http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, HTTPStatus(kind), kind.String())
	}
}

func TestFromDB(t *testing.T) {
	assert.Nil(t, FromDB(nil, "x"))
	err := FromDB(gorm.ErrRecordNotFound, "file not found")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "file not found", Message(err))

	wrapped := FromDB(errors.New("disk full"), "x")
	assert.Equal(t, KindInternal, KindOf(wrapped))
	assert.Equal(t, "database error", Message(wrapped))
}

func TestStorageUnwrap(t *testing.T) {
	cause := errors.New("io")
	err := Storage("write blob", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "write blob: io", err.Error())
}
