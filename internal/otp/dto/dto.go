package dto

import authModels "go-sahay/internal/auth/models"

type RequestOTPInput struct {
	Body RequestOTPRequest `json:"body"`
}

type RequestOTPRequest struct {
	Phone   string `json:"phone" doc:"Registered phone number"`
	Channel string `json:"channel,omitempty" doc:"Delivery channel: sms (default) or whatsapp"`
}

type RequestOTPOutput struct {
	Body RequestOTPResponse `json:"body"`
}

type RequestOTPResponse struct {
	RequestID string `json:"request_id" doc:"Present this id when verifying the code"`
	Message   string `json:"message"`
}

type VerifyOTPInput struct {
	Body VerifyOTPRequest `json:"body"`
}

type VerifyOTPRequest struct {
	RequestID string `json:"request_id" doc:"Id returned by the request call"`
	Code      string `json:"code" doc:"6-digit code"`
}

type VerifyOTPOutput struct {
	SetCookie string            `header:"Set-Cookie"`
	Body      VerifyOTPResponse `json:"body"`
}

type VerifyOTPResponse struct {
	Token string                       `json:"token"`
	User  authModels.AuthenticatedUser `json:"user"`
}
