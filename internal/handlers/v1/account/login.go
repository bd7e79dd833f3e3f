package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/logging"
)

const LoginOperationID = "login"

// LoginBody is the request body for logging in.
type LoginBody struct {
	Name     string `json:"name" minLength:"1" doc:"Account holder name"`
	Password string `json:"password" minLength:"1" doc:"Account password"`
}

// LoginInput is the Huma input for logging in.
type LoginInput struct {
	Body LoginBody
}

// LoginOutput carries the issued token.
type LoginOutput struct {
	Body struct {
		Token string `json:"token" doc:"Bearer token"`
	}
}

type loginService interface {
	Login(ctx context.Context, name, password string) (string, error)
}

// LoginHandler handles POST /v1/login.
type LoginHandler struct {
	AccountService loginService
}

func NewLoginHandler(svc loginService) *LoginHandler {
	return &LoginHandler{AccountService: svc}
}

func (h *LoginHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: LoginOperationID,
		Method:      http.MethodPost,
		Path:        "/v1/login",
		Summary:     "Log in",
		Description: "Exchanges an account holder name and password for a bearer token.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *LoginHandler) handle(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	stopTimer := logging.GetLogData(ctx).AddTiming("loginMs")
	token, err := h.AccountService.Login(ctx, input.Body.Name, input.Body.Password)
	stopTimer()
	if err != nil {
		return nil, httperr.FromError(ctx, err)
	}

	out := &LoginOutput{}
	out.Body.Token = token
	return out, nil
}
