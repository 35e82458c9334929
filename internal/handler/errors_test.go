package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"dealership/pkg/apperror"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperror.NewNotFound("vehicle", "id", "x"), http.StatusNotFound},
		{"duplicate", apperror.NewDuplicate("vehicle", "plate", "1234 KLM"), http.StatusConflict},
		{"business rule", apperror.NewBusinessRule("mileage cannot decrease"), http.StatusUnprocessableEntity},
		{"invalid operation", apperror.NewInvalidOperation("already active"), http.StatusConflict},
		{"unknown", errors.New("driver crashed"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			respondError(c, tc.err)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRespondErrorHidesInternalMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	respondError(c, errors.New("pq: connection refused"))

	body := rec.Body.String()
	if body == "" || rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected response %d %s", rec.Code, body)
	}
	if want := "internal error"; !strings.Contains(body, want) {
		t.Fatalf("body %q does not mention %q", body, want)
	}
	if strings.Contains(body, "connection refused") {
		t.Fatalf("body %q leaks the driver error", body)
	}
}

func TestActorDefaultsToSystem(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/vehicles", nil)
	if got := actor(c); got != "system" {
		t.Fatalf("actor = %s, want system", got)
	}

	c.Request.Header.Set("X-Actor", "ana")
	if got := actor(c); got != "ana" {
		t.Fatalf("actor = %s, want ana", got)
	}
}

