package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/middleware"
	"budgetapp/internal/models"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/refresh", handler.Refresh)
	r.GET("/profile", injectUserID(testUserID), handler.GetProfile)
	return r
}

func testModelUser() *models.User {
	return &models.User{Base: models.Base{ID: testUserID}, Username: "alice", Email: "alice@example.com"}
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201 with id and username", func(t *testing.T) {
		audit := &mockAuditService{}
		userSvc := &mockUserService{
			registerFn: func(username, email, _ string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: testUserID}, Username: username, Email: email}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, audit))

		rec := doRequest(r, http.MethodPost, "/auth/register", `{"username":"alice","email":"alice@example.com","password":"s3cret-pass"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		body := parseJSON(t, rec)
		if body["id"] != testUserID || body["username"] != "alice" {
			t.Errorf("unexpected body %v", body)
		}
		if _, ok := body["password"]; ok {
			t.Error("password must not be returned")
		}
		if len(audit.actions) != 1 {
			t.Errorf("expected one audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns field errors for missing fields", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/auth/register", `{"email":"not-an-email"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		body := parseJSON(t, rec)
		assertErrorCode(t, body, "VALIDATION_ERROR")
		assertFieldError(t, body, "username")
		assertFieldError(t, body, "email")
		assertFieldError(t, body, "password")
	})

	t.Run("reports duplicate username and email under their own keys", func(t *testing.T) {
		userSvc := &mockUserService{
			registerFn: func(_, _, _ string) (*models.User, error) {
				return nil, apperrors.WithFields(apperrors.ErrConflict, map[string][]string{
					"username": {"A user with that username already exists."},
					"email":    {"A user with that email already exists."},
				})
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/auth/register", `{"username":"alice","email":"alice@example.com","password":"pw"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		body := parseJSON(t, rec)
		assertErrorCode(t, body, "CONFLICT")
		assertFieldError(t, body, "username")
		assertFieldError(t, body, "email")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns token pair and stores refresh hash", func(t *testing.T) {
		var storedHash string
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) { return testModelUser(), nil },
			storeRefreshTokenHashFn: func(_, hash string) error {
				storedHash = hash
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/auth/login", `{"username":"alice","password":"pw"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := parseJSON(t, rec)
		refresh, _ := body["refresh"].(string)
		if body["access"] == "" || refresh == "" {
			t.Fatalf("expected access and refresh tokens, got %v", body)
		}
		if storedHash != middleware.HashToken(refresh) {
			t.Error("expected the refresh token hash to be stored")
		}
	})

	t.Run("invalid credentials", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) { return nil, apperrors.ErrInvalidCredentials },
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/auth/login", `{"username":"alice","password":"bad"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("locked account", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) { return nil, apperrors.ErrAccountLocked },
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/auth/login", `{"username":"alice","password":"pw"}`)
		if rec.Code != http.StatusLocked {
			t.Fatalf("expected 423, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	user := testModelUser()
	refresh, err := middleware.GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}
	access, _ := middleware.GenerateAccessToken(user)

	tests := []struct {
		name       string
		token      string
		storedHash string
		wantStatus int
	}{
		{name: "valid", token: refresh, storedHash: middleware.HashToken(refresh), wantStatus: http.StatusOK},
		{name: "rotated_away", token: refresh, storedHash: middleware.HashToken("newer"), wantStatus: http.StatusUnauthorized},
		{name: "no_stored_hash", token: refresh, storedHash: "", wantStatus: http.StatusUnauthorized},
		{name: "access_token", token: access, storedHash: middleware.HashToken(access), wantStatus: http.StatusUnauthorized},
		{name: "garbage", token: "nope", storedHash: middleware.HashToken("nope"), wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userSvc := &mockUserService{
				getRefreshTokenHashFn: func(_ string) (string, error) { return tt.storedHash, nil },
				getUserByIDFn:         func(_ string) (*models.User, error) { return user, nil },
			}
			r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}))

			rec := doRequest(r, http.MethodPost, "/auth/refresh", fmt.Sprintf(`{"refresh":%q}`, tt.token))
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAuthHandler_GetProfile(t *testing.T) {
	userSvc := &mockUserService{
		getUserByIDFn: func(id string) (*models.User, error) {
			if id != testUserID {
				return nil, apperrors.ErrUserNotFound
			}
			return testModelUser(), nil
		},
	}
	r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}))

	rec := doRequest(r, http.MethodGet, "/profile", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := parseJSON(t, rec)
	if body["username"] != "alice" {
		t.Errorf("unexpected profile %v", body)
	}
}

func TestGetUserID_MissingIdentity(t *testing.T) {
	r := gin.New()
	handler := NewAuthHandler(&mockUserService{}, &mockAuditService{})
	r.GET("/profile", handler.GetProfile)

	rec := doRequest(r, http.MethodGet, "/profile", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")
}
