package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hashed)

	assert.True(t, CheckPassword(hashed, "s3cret-pass"))
	assert.False(t, CheckPassword(hashed, "wrong-pass"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret-pass"))
}

func TestStringToInt(t *testing.T) {
	val, err := StringToInt("42")
	require.NoError(t, err)
	assert.Equal(t, 42, val)

	_, err = StringToInt("forty-two")
	assert.Error(t, err)
}

func TestGetOffsetLimitDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/user/loans", nil)
	offset, limit, err := GetOffsetLimit(r)
	require.NoError(t, err)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 10, limit)
}

func TestGetOffsetLimitFromQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/user/loans?offset=20&limit=5", nil)
	offset, limit, err := GetOffsetLimit(r)
	require.NoError(t, err)
	assert.Equal(t, 20, offset)
	assert.Equal(t, 5, limit)
}

func TestGetOffsetLimitBadValue(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/user/loans?limit=lots", nil)
	_, _, err := GetOffsetLimit(r)
	assert.Error(t, err)
}

func TestRespondJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSON(w, 201, map[string]int{"loanId": 7})
	assert.Equal(t, 201, w.Code)
	assert.JSONEq(t, `{"loanId":7}`, w.Body.String())
}

func TestRespondErrorIncludesMessage(t *testing.T) {
	w := httptest.NewRecorder()
	RespondError(w, 404, nil, "Item not found")
	assert.Equal(t, 404, w.Code)
	assert.Contains(t, w.Body.String(), "Item not found")
}
