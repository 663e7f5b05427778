package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/udla/user-directory/internal/core/domain"
	"github.com/udla/user-directory/internal/core/ports"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, username, password string) (*ports.AuthResult, error)
}

func (s *stubAuthService) Authenticate(context.Context, string, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) UserForToken(context.Context, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

type stubRegistrationService struct {
	registerFn func(ctx context.Context, caller *domain.User, in ports.RegisterInput) (*ports.AuthResult, error)
}

func (s *stubRegistrationService) Register(ctx context.Context, caller *domain.User, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, caller, in)
}

func (s *stubRegistrationService) Bootstrap(context.Context, ports.RegisterInput) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

type trackedEvent struct {
	name string
	fc   domain.FlagContext
}

type stubFlags struct {
	initialized bool
	enabled     map[string]bool
	tracked     []trackedEvent
}

func (s *stubFlags) Initialized() bool { return s.initialized }

func (s *stubFlags) IsEnabled(_ context.Context, key string, _ domain.FlagContext) bool {
	return s.enabled[key]
}

func (s *stubFlags) Track(_ context.Context, event string, fc domain.FlagContext) {
	s.tracked = append(s.tracked, trackedEvent{name: event, fc: fc})
}

var testAdmin = &domain.User{ID: "1", Username: "admin", Role: domain.RoleAdmin, IsActive: true}

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (Envelope, map[string]any) {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	data, _ := env.Data.(map[string]any)
	return env, data
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(_ context.Context, caller *domain.User, in ports.RegisterInput) (*ports.AuthResult, error) {
			if caller != testAdmin {
				t.Fatalf("caller not forwarded")
			}
			if in.Username != "alice" || in.Email != "alice@udla.edu.ec" || in.Role != "profesor" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{
				User:  &domain.User{ID: "2", Username: in.Username, Role: domain.RoleStandard, PasswordHash: "hash"},
				Token: "tok",
			}, nil
		},
	}
	h := NewAuthHandler(&stubAuthService{}, stub, &stubFlags{})

	c, rec := newTestContext(http.MethodPost, "/register",
		`{"username":"alice","email":"alice@udla.edu.ec","password":"secret","role":"profesor"}`)
	c.Set(UserContextKey, testAdmin)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	env, data := decodeEnvelope(t, rec)
	if env.Status != http.StatusCreated || env.Message == "" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if data["token"] != "tok" {
		t.Fatalf("expected token in data: %+v", data)
	}
	user, _ := data["user"].(map[string]any)
	if user["username"] != "alice" || user["role"] != "standard" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
	if strings.Contains(rec.Body.String(), "secret") || strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("credentials leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_PropagatesServiceError(t *testing.T) {
	stub := &stubRegistrationService{
		registerFn: func(context.Context, *domain.User, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.NewValidationError("username", "taken")
		},
	}
	h := NewAuthHandler(&stubAuthService{}, stub, &stubFlags{})

	c, _ := newTestContext(http.MethodPost, "/register", `{"username":"bob"}`)
	c.Set(UserContextKey, testAdmin)

	var ve *domain.ValidationError
	if err := h.Register(c); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandler_Register_NoCaller(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubRegistrationService{}, &stubFlags{})
	c, _ := newTestContext(http.MethodPost, "/register", `{}`)

	if err := h.Register(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubRegistrationService{}, &stubFlags{})
	c, _ := newTestContext(http.MethodPost, "/register", `{"username":`)
	c.Set(UserContextKey, testAdmin)

	var he *echo.HTTPError
	if err := h.Register(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	alice := &domain.User{ID: "2", Username: "alice", Email: "alice@udla.edu.ec", Role: domain.RoleStandard, IsActive: true}
	auth := &stubAuthService{
		loginFn: func(_ context.Context, username, password string) (*ports.AuthResult, error) {
			if username != "alice" || password != "secret" {
				t.Fatalf("unexpected credentials")
			}
			return &ports.AuthResult{User: alice, Token: "tok"}, nil
		},
	}
	flags := &stubFlags{}
	h := NewAuthHandler(auth, &stubRegistrationService{}, flags)

	c, rec := newTestContext(http.MethodPost, "/login", `{"username":"alice","password":"secret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	_, data := decodeEnvelope(t, rec)
	if data["token"] != "tok" {
		t.Fatalf("expected token: %+v", data)
	}

	if len(flags.tracked) != 1 || flags.tracked[0].name != LoginEvent || flags.tracked[0].fc.Key != "2" {
		t.Fatalf("login not tracked: %+v", flags.tracked)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubRegistrationService{}, &stubFlags{})
	c, _ := newTestContext(http.MethodPost, "/login", `{"username":"alice"}`)

	err := h.Login(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || !ve.Fields.Has("password") || ve.Fields.Has("username") {
		t.Fatalf("expected password field error, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	auth := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	flags := &stubFlags{}
	h := NewAuthHandler(auth, &stubRegistrationService{}, flags)

	c, _ := newTestContext(http.MethodPost, "/login", `{"username":"alice","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(flags.tracked) != 0 {
		t.Fatalf("failed logins must not be tracked")
	}
}
