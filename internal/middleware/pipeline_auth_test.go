package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

const testPipelineKey = "secret-pipeline-key"

func init() {
	gin.SetMode(gin.TestMode)
}

// setupPipelineRouter mirrors the API layout: an API-key guarded pipeline
// group next to a bearer-protected group under the same prefix.
func setupPipelineRouter(apiKey string) *gin.Engine {
	r := gin.New()
	v1 := r.Group("/api/v1")

	pipeline := v1.Group("/pipeline")
	pipeline.Use(PipelineAuthMiddleware(apiKey))
	reached := func(c *gin.Context) {
		_, hasUser := c.Get(UserIDKey)
		c.JSON(http.StatusOK, gin.H{"route": c.FullPath(), "has_user": hasUser})
	}
	pipeline.POST("/sync", reached)
	pipeline.POST("/payments/mark-overdue", reached)

	protected := v1.Group("/")
	protected.Use(AuthMiddleware())
	protected.GET("/profile", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey)})
	})
	return r
}

type pipelineRequest struct {
	method string
	path   string
	apiKey string
	bearer string
}

func doRequest(r *gin.Engine, in pipelineRequest) *httptest.ResponseRecorder {
	if in.method == "" {
		in.method = http.MethodPost
	}
	if in.path == "" {
		in.path = "/api/v1/pipeline/sync"
	}
	req := httptest.NewRequest(in.method, in.path, http.NoBody)
	if in.apiKey != "" {
		req.Header.Set("X-API-Key", in.apiKey)
	}
	if in.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+in.bearer)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseBody(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestPipelineAuthMiddleware_Key(t *testing.T) {
	tests := []struct {
		name          string
		configuredKey string
		requestKey    string
		wantStatus    int
		wantErrorCode string
	}{
		{name: "matching_key", configuredKey: testPipelineKey, requestKey: testPipelineKey, wantStatus: http.StatusOK},
		{name: "wrong_key", configuredKey: testPipelineKey, requestKey: "wrong-key", wantStatus: http.StatusUnauthorized, wantErrorCode: "INVALID_API_KEY"},
		{name: "no_key", configuredKey: testPipelineKey, wantStatus: http.StatusUnauthorized, wantErrorCode: "INVALID_API_KEY"},
		{name: "prefix_of_key", configuredKey: testPipelineKey, requestKey: "secret-pipeline", wantStatus: http.StatusUnauthorized, wantErrorCode: "INVALID_API_KEY"},
		{name: "key_with_bearer_scheme", configuredKey: testPipelineKey, requestKey: "Bearer " + testPipelineKey, wantStatus: http.StatusUnauthorized, wantErrorCode: "INVALID_API_KEY"},
		// An unset server key disables the group even for callers sending nothing.
		{name: "not_configured", configuredKey: "", requestKey: "any-key", wantStatus: http.StatusServiceUnavailable, wantErrorCode: "PIPELINE_NOT_CONFIGURED"},
		{name: "not_configured_no_key", configuredKey: "", wantStatus: http.StatusServiceUnavailable, wantErrorCode: "PIPELINE_NOT_CONFIGURED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(setupPipelineRouter(tt.configuredKey), pipelineRequest{apiKey: tt.requestKey})
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantErrorCode != "" {
				if code := errorCode(t, rec); code != tt.wantErrorCode {
					t.Errorf("error code = %q, want %q", code, tt.wantErrorCode)
				}
				return
			}
			if route, _ := parseBody(t, rec)["route"].(string); route != "/api/v1/pipeline/sync" {
				t.Errorf("route = %q, want handler to be reached", route)
			}
		})
	}
}

func TestPipelineAuthMiddleware_WithBearerRoutes(t *testing.T) {
	user := testUser()
	access, err := GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	router := setupPipelineRouter(testPipelineKey)

	t.Run("user_token_does_not_open_pipeline", func(t *testing.T) {
		rec := doRequest(router, pipelineRequest{bearer: access})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if code := errorCode(t, rec); code != "INVALID_API_KEY" {
			t.Errorf("error code = %q, want INVALID_API_KEY", code)
		}
	})

	t.Run("api_key_does_not_open_profile", func(t *testing.T) {
		rec := doRequest(router, pipelineRequest{method: http.MethodGet, path: "/api/v1/profile", apiKey: testPipelineKey})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if code := errorCode(t, rec); code != "UNAUTHORIZED" {
			t.Errorf("error code = %q, want UNAUTHORIZED", code)
		}
	})

	t.Run("api_key_as_bearer_rejected_on_profile", func(t *testing.T) {
		rec := doRequest(router, pipelineRequest{method: http.MethodGet, path: "/api/v1/profile", bearer: testPipelineKey})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("pipeline_ignores_bearer_identity", func(t *testing.T) {
		rec := doRequest(router, pipelineRequest{apiKey: testPipelineKey, bearer: access})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
		}
		if hasUser, _ := parseBody(t, rec)["has_user"].(bool); hasUser {
			t.Error("pipeline route must not carry a user identity")
		}
	})

	t.Run("profile_still_works_with_both_headers", func(t *testing.T) {
		rec := doRequest(router, pipelineRequest{method: http.MethodGet, path: "/api/v1/profile", apiKey: testPipelineKey, bearer: access})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got, _ := parseBody(t, rec)["user_id"].(string); got != user.ID {
			t.Errorf("user_id = %q, want %q", got, user.ID)
		}
	})

	t.Run("mark_overdue_is_guarded", func(t *testing.T) {
		path := "/api/v1/pipeline/payments/mark-overdue"
		if rec := doRequest(router, pipelineRequest{path: path, bearer: access}); rec.Code != http.StatusUnauthorized {
			t.Errorf("without key: status = %d, want 401", rec.Code)
		}
		rec := doRequest(router, pipelineRequest{path: path, apiKey: testPipelineKey})
		if rec.Code != http.StatusOK {
			t.Fatalf("with key: status = %d, want 200", rec.Code)
		}
		if route, _ := parseBody(t, rec)["route"].(string); route != path {
			t.Errorf("route = %q, want %q", route, path)
		}
	})
}
