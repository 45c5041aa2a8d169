package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorCarriesStatusCodeAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	Error(c, http.StatusBadRequest, CodeTotalAmtMismatch)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body["msg"] != "errTotalAmtMismatch" || body["request_id"] != "req-1" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestSuccessFlattensPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SuccessWithPage(c, "ok", gin.H{"orders": []int{1, 2}}, NewPagination(1, 20, 41))

	var body struct {
		Msg        string     `json:"msg"`
		Orders     []int      `json:"orders"`
		Pagination Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body.Msg != "ok" || len(body.Orders) != 2 || body.Pagination.TotalPage != 3 {
		t.Fatalf("unexpected body: %+v", body)
	}
}
