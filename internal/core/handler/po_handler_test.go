package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/datphandbplus/financial-be-sub001/internal/config"
	"github.com/datphandbplus/financial-be-sub001/internal/core/entity"
	"github.com/datphandbplus/financial-be-sub001/internal/core/service"
	"github.com/datphandbplus/financial-be-sub001/internal/core/testutil"
	"github.com/datphandbplus/financial-be-sub001/internal/middleware"
	"github.com/datphandbplus/financial-be-sub001/internal/storage"
	"github.com/datphandbplus/financial-be-sub001/internal/tenant"
	"go.uber.org/zap"
)

func setupPOHandlerTest(t *testing.T) (*gin.Engine, *tenant.Context) {
	t.Helper()
	tc := testutil.SetupTenant(t)
	testutil.SeedUser(t, tc.DB, "pm-1", "PM One", "PROJECT_MANAGER")
	testutil.SeedProject(t, tc.DB, "prj-1", "pm-1")

	po := &entity.ProjectPurchaseOrder{
		ID: "po-1", ProjectID: "prj-1", Code: "PO-1",
		Status: entity.POStatusApproved,
	}
	if err := tc.DB.Create(po).Error; err != nil {
		t.Fatalf("seed PO: %v", err)
	}

	registry := tenant.NewRegistry(config.DatabaseConfig{}, zap.NewNop())
	registry.Register(tc)

	// An unconfigured store keeps metadata only, like local development runs.
	store, err := storage.New(config.MinIOConfig{Bucket: "finance-test"})
	if err != nil {
		t.Fatalf("build store: %v", err)
	}

	handlers := NewHandlers(registry, service.NewServices(zap.NewNop()), store, zap.NewNop())

	router := testutil.SetupRouter()
	api := router.Group("/api/v1", middleware.Auth(testutil.JWTSecret, nil))
	api.POST("/purchase-orders/:id/attachment", handlers.PO.UploadAttachment)
	return router, tc
}

func uploadAttachment(t *testing.T, router *gin.Engine, token, poID, fileName string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	part.Write([]byte("attachment body"))
	writer.Close()

	req, _ := http.NewRequest("POST", "/api/v1/purchase-orders/"+poID+"/attachment", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadAttachmentReplacesPrevious(t *testing.T) {
	router, tc := setupPOHandlerTest(t)
	token := testutil.GenerateTestToken("pm-1", "PM One", "PROJECT_MANAGER", false)

	w := uploadAttachment(t, router, token, "po-1", "quote.pdf")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var po entity.ProjectPurchaseOrder
	if err := tc.DB.Where("id = ?", "po-1").First(&po).Error; err != nil {
		t.Fatalf("load PO: %v", err)
	}
	if po.AttachmentKey == nil {
		t.Fatal("Expected attachment key recorded")
	}
	first := *po.AttachmentKey

	w = uploadAttachment(t, router, token, "po-1", "quote-v2.pdf")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on re-upload, got %d: %s", w.Code, w.Body.String())
	}

	tc.DB.Where("id = ?", "po-1").First(&po)
	if po.AttachmentKey == nil || *po.AttachmentKey == first {
		t.Fatalf("Expected a new attachment key, got %v", po.AttachmentKey)
	}
}

func TestUploadAttachmentUnknownOrder(t *testing.T) {
	router, _ := setupPOHandlerTest(t)
	token := testutil.GenerateTestToken("pm-1", "PM One", "PROJECT_MANAGER", false)

	w := uploadAttachment(t, router, token, "no-such-po", "quote.pdf")
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
