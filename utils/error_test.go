package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"homeease/errs"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{errs.NotFound("booking_not_found", "booking b1 not found"), http.StatusNotFound, "booking_not_found"},
		{errs.Unauthorized("forbidden", "nope"), http.StatusForbidden, "forbidden"},
		{errs.BusinessRule("provider_unavailable", "busy"), http.StatusBadRequest, "provider_unavailable"},
		{errs.Gateway("card_declined", "declined"), http.StatusBadRequest, "card_declined"},
		{errs.GatewayTimeout(errors.New("deadline")), http.StatusGatewayTimeout, "gateway_timeout"},
		{errors.New("mongo: connection refused at 10.0.0.3"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/bookings/b1", nil)

		RespondError(c, tc.err)

		if w.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, w.Code, tc.status)
		}
		var body Response
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Success || body.Code != tc.code || body.Message == "" {
			t.Errorf("%v: body = %+v", tc.err, body)
		}
		if tc.status == http.StatusInternalServerError && body.Message != "an unexpected error occurred" {
			t.Errorf("internal details leaked: %q", body.Message)
		}
	}
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}
