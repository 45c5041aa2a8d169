package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ICMM2025/icmm-server/internal/config"
	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openRouterTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	// 通知协程与请求共用单连接，避免共享缓存表锁
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if err := models.SeedStatuses(db); err != nil {
		t.Fatalf("seed statuses failed: %v", err)
	}
	return db
}

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	optID  uint
	prodID uint
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := openRouterTestDB(t)

	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: "debug"},
		JWT:       config.JWTConfig{SecretKey: "router-test-secret-0123456789"},
		Storage:   config.StorageConfig{Driver: "local", LocalDir: t.TempDir(), Folder: "icmm"},
		PromptPay: config.PromptPayConfig{Mode: "bill", BillerID: "099904909401"},
		Upload: config.UploadConfig{
			MaxSize:           1 << 20,
			AllowedTypes:      []string{"image/png", "image/jpeg"},
			AllowedExtensions: []string{".png", ".jpg"},
			TempDir:           t.TempDir(),
		},
		Slip: config.SlipConfig{ReceiverAccounts: []string{"123-4-56789-0"}},
	}
	container, err := provider.NewContainer(cfg, db)
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	t.Cleanup(container.Close)

	product := models.Product{
		Name:        "ICMM Finisher Tee",
		IsActive:    true,
		ProductOpts: []models.ProductOpt{{OptName: "M", Price: models.NewMoneyFromFloat(50), IsActive: true}},
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := models.InitDefaultAdmin(db, "staff", "pass-1234"); err != nil {
		t.Fatalf("init admin failed: %v", err)
	}
	return &testServer{
		engine: SetupRouter(cfg, container),
		db:     db,
		optID:  product.ProductOpts[0].ProductOptID,
		prodID: product.ProductID,
	}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w.Code, decodeBody(t, w)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		return nil
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v (%s)", err, w.Body.String())
	}
	return body
}

func (s *testServer) orderBody(totalAmt, grandTotal, discountAmt, code string) string {
	return fmt.Sprintf(`{
		"input": {"name": "Somchai", "email": "somchai@example.com", "phone": "0812345678", "address": "1 Sukhumvit"},
		"cart": [{"productId": %d, "productOptId": %d, "unit": 2, "price": 50}],
		"totalAmt": %s, "deliveryCost": 30, "discountAmt": %s, "grandTotalAmt": %s, "discountCode": %q
	}`, s.prodID, s.optID, totalAmt, discountAmt, grandTotal, code)
}

func (s *testServer) amountBody(totalAmt, deliveryCost, discountAmt, grandTotal string) string {
	return fmt.Sprintf(`{
		"input": {"name": "Somchai", "email": "somchai@example.com", "phone": "0812345678", "address": "1 Sukhumvit"},
		"cart": [{"productId": %d, "productOptId": %d, "unit": 2, "price": 50}],
		"totalAmt": %s, "deliveryCost": %s, "discountAmt": %s, "grandTotalAmt": %s
	}`, s.prodID, s.optID, totalAmt, deliveryCost, discountAmt, grandTotal)
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/admin/login", `{"username":"staff","password":"pass-1234"}`, "")
	if status != http.StatusOK {
		t.Fatalf("login failed: %d %v", status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login returned empty token: %v", body)
	}
	return token
}

func TestAddOrderAndCheckOrder(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/order/add-order", s.orderBody("100", "130", "0", ""), "")
	if status != http.StatusOK {
		t.Fatalf("add order failed: %d %v", status, body)
	}
	if body["msg"] != "Add Order successful..." || body["grandTotalAmt"] != "130.00" {
		t.Fatalf("unexpected body: %v", body)
	}
	qrURL, _ := body["qrUrl"].(string)
	if !strings.HasPrefix(qrURL, "/uploads/") {
		t.Fatalf("expected local qr url, got %q", qrURL)
	}
	orderID := uint(body["orderId"].(float64))

	status, body = s.do(t, http.MethodPost, "/api/order/check-order", fmt.Sprintf(`{"orderId":"%d","email":"somchai@example.com"}`, orderID), "")
	if status != http.StatusOK {
		t.Fatalf("check order failed: %d %v", status, body)
	}
	order := body["order"].(map[string]interface{})
	if order["statusName"] != "userNotPaid" || order["payQrUrl"] != qrURL {
		t.Fatalf("unexpected order view: %v", order)
	}

	status, body = s.do(t, http.MethodPost, "/api/order/check-order", fmt.Sprintf(`{"orderId":%d,"email":"other@example.com"}`, orderID), "")
	if status != http.StatusNotFound || body["msg"] != "errOrderNotFound" {
		t.Fatalf("expected 404 errOrderNotFound, got %d %v", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/api/order/check-order", `{"orderId":"abc","email":"somchai@example.com"}`, "")
	if status != http.StatusBadRequest || body["msg"] != "errInvalidOrderId" {
		t.Fatalf("expected 400 errInvalidOrderId, got %d %v", status, body)
	}
}

func TestAddOrderValidationCodes(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name string
		body string
		code string
	}{
		{name: "total mismatch", body: s.orderBody("90", "120", "0", ""), code: "errTotalAmtMismatch"},
		{name: "grand mismatch", body: s.orderBody("100", "125", "0", ""), code: "errGrandTotalMismatch"},
		{name: "discount without code", body: s.orderBody("100", "120", "10", ""), code: "errDiscountMismatch"},
		{name: "unknown code", body: s.orderBody("100", "120", "10", "NOPE"), code: "errCodeNotFound"},
		{name: "missing input", body: `{"cart":[{"productId":1,"productOptId":1,"unit":1,"price":50}],"totalAmt":50,"deliveryCost":0,"grandTotalAmt":50}`, code: "errMissing"},
		{name: "missing amounts", body: `{"input":{"name":"a"},"cart":[{"productId":1,"productOptId":1,"unit":1,"price":50}]}`, code: "errMissing"},
		{name: "empty cart", body: `{"input":{"name":"a"},"cart":[],"totalAmt":50,"deliveryCost":0,"grandTotalAmt":50}`, code: "errMissing"},
		{name: "missing customer field", body: `{"input":{"name":"a"},"cart":[{"productId":1,"productOptId":1,"unit":1,"price":50}],"totalAmt":50,"deliveryCost":0,"grandTotalAmt":50}`, code: "errInputMissing"},
		{name: "string price", body: `{"input":{"name":"a","email":"a@b.c","phone":"1","address":"x"},"cart":[{"productId":1,"productOptId":1,"unit":1,"price":"50"}],"totalAmt":50,"deliveryCost":0,"grandTotalAmt":50}`, code: "errCartMissing"},
		{name: "unknown option", body: `{"input":{"name":"a","email":"a@b.c","phone":"1","address":"x"},"cart":[{"productId":1,"productOptId":999,"unit":1,"price":50}],"totalAmt":50,"deliveryCost":0,"grandTotalAmt":50}`, code: "errInvalidProdectOptId"},
		{name: "not json", body: `{`, code: "errMissing"},
		{name: "negative delivery", body: s.amountBody("100", "-100", "0", "0"), code: "errInvalidAmount"},
		{name: "negative grand total", body: s.amountBody("100", "-300", "0", "-200"), code: "errInvalidAmount"},
		{name: "negative discount", body: s.amountBody("100", "30", "-10", "140"), code: "errInvalidAmount"},
		{name: "oversized option id", body: fmt.Sprintf(`{"input":{"name":"a","email":"a@b.c","phone":"1","address":"x"},"cart":[{"productId":%d,"productOptId":18446744073709551617,"unit":2,"price":50}],"totalAmt":100,"deliveryCost":30,"grandTotalAmt":130}`, s.prodID), code: "errCartMissing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodPost, "/api/order/add-order", tc.body, "")
			if status != http.StatusBadRequest || body["msg"] != tc.code {
				t.Fatalf("expected 400 %s, got %d %v", tc.code, status, body)
			}
		})
	}
	var count int64
	if err := s.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected orders must not persist, found %d", count)
	}
}

func TestCouponSingleUseOverHTTP(t *testing.T) {
	s := newTestServer(t)
	coupon := models.Coupon{DiscountCode: "SAVE10", DiscountType: models.DiscountTypeFixed, DiscountAmt: models.NewMoneyFromFloat(10), IsActive: true}
	if err := s.db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	status, body := s.do(t, http.MethodPost, "/api/order/apply-coupon", `{"code":" SAVE10 "}`, "")
	if status != http.StatusOK || body["discountAmt"] != "10.00" || body["discountType"] != "fixed" {
		t.Fatalf("apply coupon failed: %d %v", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/api/order/add-order", s.orderBody("100", "120", "10", "SAVE10"), "")
	if status != http.StatusOK {
		t.Fatalf("add order with coupon failed: %d %v", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/api/order/apply-coupon", `{"code":"SAVE10"}`, "")
	if status != http.StatusBadRequest || body["msg"] != "errCodeNotFound" {
		t.Fatalf("expected consumed coupon rejected, got %d %v", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/api/order/apply-coupon", `{"code":"  "}`, "")
	if status != http.StatusBadRequest || body["msg"] != "errPlaseFillCode" {
		t.Fatalf("expected blank code rejected, got %d %v", status, body)
	}
}

func multipartRequest(t *testing.T, path string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field failed: %v", err)
		}
	}
	if filename != "" {
		part, err := writer.CreateFormFile("images", filename)
		if err != nil {
			t.Fatalf("create form file failed: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write file failed: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

var testPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestSendOrderWithoutSlipAPIRecordsMarker(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodPost, "/api/order/add-order", s.orderBody("100", "130", "0", ""), "")
	if status != http.StatusOK {
		t.Fatalf("add order failed: %d %v", status, body)
	}
	orderID := uint(body["orderId"].(float64))

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, multipartRequest(t, "/api/order/send-order", map[string]string{"orderId": fmt.Sprint(orderID)}, "slip.png", testPNG))
	if w.Code != http.StatusOK {
		t.Fatalf("send order failed: %d %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["statusId"] != float64(2) || resp["isCheckSlipFail"] != nil {
		t.Fatalf("unexpected body: %v", resp)
	}
	if note, _ := resp["checkSlipNote"].(string); !strings.HasPrefix(note, "errCheckSlip") {
		t.Fatalf("expected error marker, got %q", note)
	}

	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, multipartRequest(t, "/api/order/send-order", map[string]string{"orderId": "x"}, "slip.png", testPNG))
	if w.Code != http.StatusBadRequest || decodeBody(t, w)["msg"] != "errInvalidOrderId" {
		t.Fatalf("expected errInvalidOrderId, got %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, multipartRequest(t, "/api/order/send-order", map[string]string{"orderId": fmt.Sprint(orderID)}, "slip.txt", []byte("hello")))
	if w.Code != http.StatusBadRequest || decodeBody(t, w)["msg"] != "errUploadInvalid" {
		t.Fatalf("expected errUploadInvalid, got %d %s", w.Code, w.Body.String())
	}
}

func TestAdminSurface(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodGet, "/api/admin/statuses", "", "")
	if status != http.StatusUnauthorized || body["msg"] != "errUnauthorized" {
		t.Fatalf("expected 401 without token, got %d %v", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/api/admin/login", `{"username":"staff","password":"wrong"}`, "")
	if status != http.StatusUnauthorized || body["msg"] != "errInvalidCredentials" {
		t.Fatalf("expected invalid credentials, got %d %v", status, body)
	}
	token := s.login(t)

	status, body = s.do(t, http.MethodGet, "/api/admin/statuses", "", token)
	if status != http.StatusOK || len(body["statuses"].([]interface{})) != 6 {
		t.Fatalf("unexpected statuses: %d %v", status, body)
	}

	status, body = s.do(t, http.MethodPost, "/api/order/add-order", s.orderBody("100", "130", "0", ""), "")
	if status != http.StatusOK {
		t.Fatalf("add order failed: %d %v", status, body)
	}
	orderID := uint(body["orderId"].(float64))

	status, body = s.do(t, http.MethodPost, "/api/admin/forward-status", fmt.Sprintf(`{"orderId":%d,"statusId":5}`, orderID), token)
	if status != http.StatusOK {
		t.Fatalf("forward status failed: %d %v", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/api/admin/forward-status", fmt.Sprintf(`{"orderId":%d,"statusId":99}`, orderID), token)
	if status != http.StatusBadRequest || body["msg"] != "errStatusNotFound" {
		t.Fatalf("expected unknown status rejected, got %d %v", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/api/admin/edit-detail-order", fmt.Sprintf(`{"orderId":%d,"emsTracking":"EX123TH"}`, orderID), token)
	if status != http.StatusOK {
		t.Fatalf("edit order failed: %d %v", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/api/admin/edit-cart", fmt.Sprintf(`{"orderId":%d,"cart":[{"productId":%d,"productOptId":%d,"unit":3,"price":45.555}]}`, orderID, s.prodID, s.optID), token)
	if status != http.StatusOK || len(body["orderDetails"].([]interface{})) != 1 {
		t.Fatalf("edit cart failed: %d %v", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/api/admin/add-note", fmt.Sprintf(`{"orderId":%d,"noteTxt":"called customer"}`, orderID), token)
	if status != http.StatusOK {
		t.Fatalf("add note failed: %d %v", status, body)
	}

	status, body = s.do(t, http.MethodPost, "/api/admin/order-detail", fmt.Sprintf(`{"orderId":%d}`, orderID), token)
	if status != http.StatusOK {
		t.Fatalf("order detail failed: %d %v", status, body)
	}
	order := body["order"].(map[string]interface{})
	if order["emsTracking"] != "EX123TH" || order["statusId"] != float64(5) {
		t.Fatalf("unexpected order: %v", order)
	}
	// created + forward + edit + cart + human note
	if notes := order["notes"].([]interface{}); len(notes) != 5 {
		t.Fatalf("expected 5 notes, got %d", len(notes))
	}
	detail := order["orderDetails"].([]interface{})[0].(map[string]interface{})
	if detail["price"] != "45.56" || detail["unit"] != float64(3) {
		t.Fatalf("unexpected detail: %v", detail)
	}

	status, body = s.do(t, http.MethodGet, "/api/admin/all-orders?status_id=5", "", token)
	if status != http.StatusOK || len(body["orders"].([]interface{})) != 1 {
		t.Fatalf("unexpected order list: %d %v", status, body)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/export-excel", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != xlsxContentTypeForTest || w.Body.Len() == 0 {
		t.Fatalf("unexpected export: %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	status, body = s.do(t, http.MethodPost, "/api/admin/coupons", `{"discountCode":"RUN20","discountType":"percent","discountAmt":20,"maxDiscountAmt":"100"}`, token)
	if status != http.StatusOK {
		t.Fatalf("create coupon failed: %d %v", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/api/admin/coupons", `{"discountCode":"RUN20","discountType":"percent","discountAmt":20}`, token)
	if status != http.StatusConflict || body["msg"] != "errCouponExists" {
		t.Fatalf("expected duplicate coupon rejected, got %d %v", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/api/admin/mailer", `{"to":"not-an-email","subject":"hi","text":"hello"}`, token)
	if status != http.StatusBadRequest || body["msg"] != "errInvalidEmail" {
		t.Fatalf("expected invalid email, got %d %v", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/api/admin/mailer", `{"to":"runner@example.com","subject":"hi","text":"hello"}`, token)
	if status != http.StatusServiceUnavailable || body["msg"] != "errEmailUnavailable" {
		t.Fatalf("expected disabled email service, got %d %v", status, body)
	}
}

const xlsxContentTypeForTest = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func TestVirtualRunUpload(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, multipartRequest(t, "/api/virtual-run/upload", map[string]string{"name": "Nok", "email": "nok@example.com"}, "run.png", testPNG))
	if w.Code != http.StatusBadRequest || decodeBody(t, w)["msg"] != "errRunnerNotFound" {
		t.Fatalf("expected errRunnerNotFound, got %d %s", w.Code, w.Body.String())
	}

	status, body := s.do(t, http.MethodPost, "/api/admin/runners", `{"userName":"Nok","email":"nok@example.com"}`, token)
	if status != http.StatusOK {
		t.Fatalf("register runner failed: %d %v", status, body)
	}
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, multipartRequest(t, "/api/virtual-run/upload", map[string]string{"name": "Nok", "email": "nok@example.com"}, "run.png", testPNG))
	if w.Code != http.StatusOK {
		t.Fatalf("upload failed: %d %s", w.Code, w.Body.String())
	}

	status, body = s.do(t, http.MethodGet, "/api/admin/virtual-runs", "", token)
	if status != http.StatusOK {
		t.Fatalf("list runs failed: %d %v", status, body)
	}
	runs := body["trans"].([]interface{})
	if len(runs) != 1 || runs[0].(map[string]interface{})["status"] != "uploaded" {
		t.Fatalf("unexpected runs: %v", runs)
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodGet, "/api/nope", "", "")
	if status != http.StatusNotFound || body["msg"] != "errNotFound" {
		t.Fatalf("expected 404, got %d %v", status, body)
	}
}
