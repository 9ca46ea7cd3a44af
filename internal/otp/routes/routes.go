package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"go-sahay/internal/otp/dto"
	"go-sahay/internal/otp/services"
	"go-sahay/pkg/config"
)

// Module handles OTP login route registration
type Module struct {
	service *services.Service
}

// NewModule creates a new OTP routes module
func NewModule(service *services.Service) *Module {
	return &Module{service: service}
}

// RegisterUnifiedRoutes registers the login endpoints on the shared API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	huma.Register(api, huma.Operation{
		OperationID: "otp-request",
		Method:      http.MethodPost,
		Path:        basePath + "/otp/request",
		Summary:     "Request login code",
		Description: "Sends a one-time code to a registered phone number",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *dto.RequestOTPInput) (*dto.RequestOTPOutput, error) {
		channel := input.Body.Channel
		if channel == "" {
			channel = services.ChannelSMS
		}

		requestID, err := m.service.Request(ctx, input.Body.Phone, channel)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return &dto.RequestOTPOutput{Body: dto.RequestOTPResponse{
			RequestID: requestID,
			Message:   "Code sent",
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "otp-verify",
		Method:      http.MethodPost,
		Path:        basePath + "/otp/verify",
		Summary:     "Verify login code",
		Description: "Exchanges a valid code for a session token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *dto.VerifyOTPInput) (*dto.VerifyOTPOutput, error) {
		token, user, err := m.service.Verify(ctx, input.Body.RequestID, input.Body.Code)
		if err != nil {
			return nil, huma.Error401Unauthorized(err.Error())
		}

		cookie := http.Cookie{
			Name:     "sahay_session",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Secure:   config.GetBoolEnv("COOKIE_SECURE", true),
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(config.GetDurationEnv("JWT_LIFETIME", 24*time.Hour)),
		}
		return &dto.VerifyOTPOutput{
			SetCookie: cookie.String(),
			Body: dto.VerifyOTPResponse{
				Token: token,
				User:  *user,
			},
		}, nil
	})
}
