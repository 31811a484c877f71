package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/crypto/bcrypt"

	sm "github.com/inventia-dev/fieldset/internal/server/middleware"
)

type Handler struct {
	Repo *UserRepo
	JWT  *JWT
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        userInfo  `json:"user"`
}

type loginInput struct {
	Body loginBody
}

type loginOutput struct {
	Body tokenResponse
}

type meOutput struct {
	Body userInfo
}

// Register wires the public login endpoint. It must run before the auth
// middleware is applied so login stays reachable without a token.
func Register(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/v1/auth/login",
		Summary:     "Login",
		Tags:        []string{"Auth"},
	}, h.login)
}

// RegisterProtected wires refresh and me, which need an authenticated
// subject in context.
func RegisterProtected(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/v1/auth/refresh",
		Summary:     "Refresh token",
		Tags:        []string{"Auth"},
	}, h.refresh)

	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/v1/auth/me",
		Summary:     "Current user",
		Tags:        []string{"Auth"},
	}, h.me)
}

func (h *Handler) login(ctx context.Context, in *loginInput) (*loginOutput, error) {
	u, err := h.Repo.GetByEmail(ctx, in.Body.Email)
	if err != nil || u == nil {
		return nil, huma.Error401Unauthorized("credenciales inválidas")
	}
	if !u.IsActive {
		return nil, huma.Error401Unauthorized("usuario desactivado")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Body.Password)) != nil {
		return nil, huma.Error401Unauthorized("credenciales inválidas")
	}
	tok, err := h.JWT.Generate(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &loginOutput{Body: tokenResponse{
		AccessToken: tok,
		TokenType:   "bearer",
		ExpiresAt:   time.Now().Add(h.JWT.Expiry()),
		User:        userInfo{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, IsActive: u.IsActive},
	}}, nil
}

type refreshInput struct{}

func (h *Handler) refresh(ctx context.Context, _ *refreshInput) (*loginOutput, error) {
	sub := sm.UserFromContext(ctx)
	if sub == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}
	u, err := h.Repo.GetByID(ctx, sub)
	if err != nil || u == nil || !u.IsActive {
		return nil, huma.Error401Unauthorized("unauthorized")
	}
	tok, err := h.JWT.Generate(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &loginOutput{Body: tokenResponse{
		AccessToken: tok,
		TokenType:   "bearer",
		ExpiresAt:   time.Now().Add(h.JWT.Expiry()),
		User:        userInfo{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, IsActive: u.IsActive},
	}}, nil
}

type meInput struct{}

func (h *Handler) me(ctx context.Context, _ *meInput) (*meOutput, error) {
	sub := sm.UserFromContext(ctx)
	u, err := h.Repo.GetByID(ctx, sub)
	if err != nil || u == nil {
		return nil, huma.Error401Unauthorized("unauthorized")
	}
	return &meOutput{Body: userInfo{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, IsActive: u.IsActive}}, nil
}
