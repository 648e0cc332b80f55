package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmitContactRequiresEmailAndMessage(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing email", `{"message":"help me"}`},
		{"missing message", `{"email":"a@b.c"}`},
		{"empty body", `{}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/contact", strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			SubmitContact(w, r)
			assert.Equal(t, 400, w.Code)
		})
	}
}

func TestSubmitContactRejectsOverlongMessage(t *testing.T) {
	body := `{"email":"a@b.c","message":"` + strings.Repeat("x", 5001) + `"}`
	r := httptest.NewRequest("POST", "/api/contact", strings.NewReader(body))
	w := httptest.NewRecorder()
	SubmitContact(w, r)
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "too long")
}
