package authclient

import (
	"context"
	"errors"
	"net/http"
)

type passwordResetInput struct {
	Email string `json:"email"`
}

type passwordResetConfirmInput struct {
	UID                string `json:"uid"`
	Token              string `json:"token"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

type consentApproveInput struct {
	UID   string `json:"uid"`
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// RequestPasswordReset starts the reset flow. The server answers the
// same whether or not the email matches an account.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var res messageResponse
	if err := c.do(ctx, http.MethodPost, passwordResetPath, passwordResetInput{Email: email}, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

// ConfirmPasswordReset completes the reset flow. On a validation
// failure the returned error's message follows a fixed precedence:
// the top-level error first, then new_password, then the confirmation
// field, then the link parameters.
func (c *Client) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword, newPasswordConfirm string) (string, error) {
	in := passwordResetConfirmInput{
		UID:                uid,
		Token:              token,
		NewPassword:        newPassword,
		NewPasswordConfirm: newPasswordConfirm,
	}

	var res messageResponse
	if err := c.do(ctx, http.MethodPost, passwordConfirmPath, in, &res); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if msg := apiErr.FieldMessage("new_password", "new_password_confirm", "uid", "token"); msg != "" {
				apiErr.Message = msg
				return "", apiErr
			}
			apiErr.Message = "Could not reset password. The link may have expired."
			return "", apiErr
		}
		return "", err
	}
	return res.Message, nil
}

// ApproveConsent activates a student account from the emailed link. A
// link missing either parameter fails locally with the same message the
// server would produce, without a network round trip.
func (c *Client) ApproveConsent(ctx context.Context, uid, token string) (string, error) {
	if uid == "" || token == "" {
		return "", &APIError{Status: http.StatusBadRequest, Message: "Missing uid or token."}
	}

	var res messageResponse
	if err := c.do(ctx, http.MethodPost, consentApprovePath, consentApproveInput{UID: uid, Token: token}, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}
