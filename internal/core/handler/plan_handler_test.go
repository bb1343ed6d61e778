package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/datphandbplus/financial-be-sub001/internal/config"
	"github.com/datphandbplus/financial-be-sub001/internal/core/service"
	"github.com/datphandbplus/financial-be-sub001/internal/core/testutil"
	"github.com/datphandbplus/financial-be-sub001/internal/middleware"
	"github.com/datphandbplus/financial-be-sub001/internal/tenant"
	"go.uber.org/zap"
)

func setupPlanHandlerTest(t *testing.T) *gin.Engine {
	t.Helper()
	tc := testutil.SetupTenant(t)
	testutil.SeedUser(t, tc.DB, "pm-1", "PM One", "PROJECT_MANAGER")
	testutil.SeedProject(t, tc.DB, "prj-1", "pm-1")

	registry := tenant.NewRegistry(config.DatabaseConfig{}, zap.NewNop())
	registry.Register(tc)

	handlers := NewHandlers(registry, service.NewServices(zap.NewNop()), nil, zap.NewNop())

	router := testutil.SetupRouter()
	api := router.Group("/api/v1", middleware.Auth(testutil.JWTSecret, nil))
	api.POST("/bill-plans", handlers.Plan.AddBillPlan)
	api.GET("/bill-plans", handlers.Plan.ListBillPlans)
	return router
}

func TestAddBillPlanOverHTTP(t *testing.T) {
	router := setupPlanHandlerTest(t)
	token := testutil.GenerateTestToken("cfo-1", "CFO", "CFO", false)

	w := testutil.DoRequest(router, "POST", "/api/v1/bill-plans", map[string]interface{}{
		"project_id":     "prj-1",
		"name":           "first tranche",
		"target_percent": 60,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["message"] != "CREATE_PLAN_SUCCESS" {
		t.Fatalf("Expected CREATE_PLAN_SUCCESS, got %v", resp["message"])
	}

	// 60 + 50 breaks the allocation; the rejection code rides the envelope.
	w = testutil.DoRequest(router, "POST", "/api/v1/bill-plans", map[string]interface{}{
		"project_id":     "prj-1",
		"name":           "second tranche",
		"target_percent": 50,
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	if resp["message"] != "PLAN_OVER" {
		t.Fatalf("Expected PLAN_OVER, got %v", resp["message"])
	}
}

func TestBillPlanRequiresAuth(t *testing.T) {
	router := setupPlanHandlerTest(t)

	w := testutil.DoRequest(router, "GET", "/api/v1/bill-plans?project_id=prj-1", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without token, got %d", w.Code)
	}
}
