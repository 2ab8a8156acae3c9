package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/bookstore-api/internal/googleauth"
	"github.com/inkwell-labs/bookstore-api/internal/repositories"
)

type apiEnvelope struct {
	Message         string `json:"message"`
	Status          int    `json:"status"`
	CaptchaRequired bool   `json:"captcha_required"`
	Data            struct {
		Access  string `json:"access"`
		Account struct {
			ID           int64  `json:"id"`
			Email        string `json:"email"`
			FullName     string `json:"full_name"`
			IsGoogleUser *bool  `json:"is_google_user"`
		} `json:"account"`
	} `json:"data"`
}

func TestSignupActivateLogin(t *testing.T) {
	server := freshServer(t)
	email, password := TestAccountCredentials("signup")

	var signupResp apiEnvelope
	resp, err := server.DoJSON(http.MethodPost, "/api/accounts/signup/", map[string]string{
		"email":     email,
		"password":  password,
		"full_name": "New Reader",
		"phone":     "555-0100",
		"birthday":  "1990-04-01",
	}, nil, &signupResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Registration successful. Please check your email to activate your account.", signupResp.Message)

	sent := server.Mailer.WaitForEmail(2 * time.Second)
	require.NotNil(t, sent, "activation email was never sent")
	assert.Equal(t, "activation", sent.Kind)

	// The account exists but cannot log in until activated, and the
	// failure is indistinguishable from a wrong password.
	var loginResp apiEnvelope
	resp, err = server.DoJSON(http.MethodPost, "/api/accounts/login/", map[string]string{
		"email":    email,
		"password": password,
	}, nil, &loginResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid credentials.", loginResp.Message)

	// Activation uses the account id and token carried by the emailed
	// link, exactly as the frontend forwards them.
	accountRepo := repositories.NewAccountRepository(testDB.DB)
	account, err := accountRepo.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	require.Equal(t, account.ID, sent.AccountID, "activation email must carry the account id")

	activateURL := fmt.Sprintf("/api/accounts/activate/%d/%s/", sent.AccountID, sent.Token)
	var activateResp apiEnvelope
	resp, err = server.DoJSON(http.MethodGet, activateURL, nil, nil, &activateResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Account activated successfully! You can now log in.", activateResp.Message)

	// The link is idempotent.
	resp, err = server.DoJSON(http.MethodGet, activateURL, nil, nil, &activateResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Account already activated.", activateResp.Message)

	resp, err = server.DoJSON(http.MethodPost, "/api/accounts/login/", map[string]string{
		"email":    email,
		"password": password,
	}, nil, &loginResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Login successful.", loginResp.Message)
	assert.NotEmpty(t, loginResp.Data.Access)
	assert.Equal(t, email, loginResp.Data.Account.Email)

	cookie := RefreshCookie(resp)
	require.NotNil(t, cookie, "login must set the refresh cookie")
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)
}

func TestActivateWithBadToken(t *testing.T) {
	server := freshServer(t)

	var activateResp apiEnvelope
	resp, err := server.DoJSON(http.MethodGet, "/api/accounts/activate/12345/garbage/", nil, nil, &activateResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Activation link is invalid or has expired.", activateResp.Message)
}

func TestLoginCaptchaGate(t *testing.T) {
	server := freshServer(t)
	email, password := TestAccountCredentials("captcha")
	_, err := testDB.CreateTestAccount(context.Background(), email, password, false)
	require.NoError(t, err)

	headers := map[string]string{"X-Real-IP": "10.9.9.9"}

	login := func(pass, captcha string) (*http.Response, apiEnvelope) {
		body := map[string]string{"email": email, "password": pass}
		if captcha != "" {
			body["captcha"] = captcha
		}
		var envelope apiEnvelope
		resp, err := server.DoJSON(http.MethodPost, "/api/accounts/login/", body, headers, &envelope)
		require.NoError(t, err)
		return resp, envelope
	}

	resp, envelope := login("wrong-password", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid credentials.", envelope.Message)
	assert.False(t, envelope.CaptchaRequired)

	resp, envelope = login("wrong-password", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid credentials.", envelope.Message)

	// Third failure announces the captcha requirement.
	resp, envelope = login("wrong-password", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid credentials. Captcha required for next attempt.", envelope.Message)
	assert.True(t, envelope.CaptchaRequired)

	// Correct password without captcha is still rejected.
	resp, envelope = login(password, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Captcha verification required. Please complete the captcha.", envelope.Message)
	assert.True(t, envelope.CaptchaRequired)

	// Captcha plus correct password clears the gate.
	resp, envelope = login(password, "valid-captcha")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Login successful.", envelope.Message)
}

func TestRefreshRotation(t *testing.T) {
	server := freshServer(t)
	email, password := TestAccountCredentials("refresh")
	_, err := testDB.CreateTestAccount(context.Background(), email, password, false)
	require.NoError(t, err)

	var loginResp apiEnvelope
	resp, err := server.DoJSON(http.MethodPost, "/api/accounts/login/", map[string]string{
		"email":    email,
		"password": password,
	}, nil, &loginResp)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := RefreshCookie(resp)
	require.NotNil(t, cookie)

	var refreshResp apiEnvelope
	resp, err = server.DoJSON(http.MethodPost, "/api/accounts/refresh/", nil,
		map[string]string{"Cookie": cookie.String()}, &refreshResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Token refreshed successfully.", refreshResp.Message)
	assert.NotEmpty(t, refreshResp.Data.Access)

	rotated := RefreshCookie(resp)
	require.NotNil(t, rotated, "refresh must rotate the cookie")
	assert.NotEmpty(t, rotated.Value)

	// No cookie at all.
	resp, err = server.DoJSON(http.MethodPost, "/api/accounts/refresh/", nil, nil, &refreshResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "No refresh token provided.", refreshResp.Message)

	// Structurally invalid cookie.
	resp, err = server.DoJSON(http.MethodPost, "/api/accounts/refresh/", nil,
		map[string]string{"Cookie": "refresh_token=not-a-jwt"}, &refreshResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid or expired token.", refreshResp.Message)
}

func TestGoogleSignInCreatesLinksAndConflicts(t *testing.T) {
	server := freshServer(t)
	email, _ := TestAccountCredentials("google")

	claims := &googleauth.Claims{
		Issuer:        "https://accounts.google.com",
		Audience:      TestGoogleClientID,
		Subject:       "google-sub-1",
		Email:         email,
		EmailVerified: true,
		Name:          "Google Reader",
	}
	server.GoogleVerifier.Register("credential-one", claims)

	var googleResp apiEnvelope
	resp, err := server.DoJSON(http.MethodPost, "/api/accounts/google/", map[string]string{
		"credential": "credential-one",
	}, nil, &googleResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Google Sign-In successful.", googleResp.Message)
	require.NotNil(t, googleResp.Data.Account.IsGoogleUser)
	assert.True(t, *googleResp.Data.Account.IsGoogleUser)
	require.NotNil(t, RefreshCookie(resp))

	// A second identity claiming the same email is rejected.
	conflicting := *claims
	conflicting.Subject = "google-sub-2"
	server.GoogleVerifier.Register("credential-two", &conflicting)

	resp, err = server.DoJSON(http.MethodPost, "/api/accounts/google/", map[string]string{
		"credential": "credential-two",
	}, nil, &googleResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, googleResp.Message, "different Google account")
}

func TestLogout(t *testing.T) {
	server := freshServer(t)
	email, password := TestAccountCredentials("logout")
	account, err := testDB.CreateTestAccount(context.Background(), email, password, false)
	require.NoError(t, err)

	accessToken, err := server.AccessTokenFor(account)
	require.NoError(t, err)

	var logoutResp apiEnvelope
	resp, err := server.DoJSON(http.MethodPost, "/api/accounts/logout/", nil,
		map[string]string{"Authorization": "Bearer " + accessToken}, &logoutResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logout successful.", logoutResp.Message)

	cleared := RefreshCookie(resp)
	require.NotNil(t, cleared, "logout must clear the refresh cookie")
	assert.Empty(t, cleared.Value)

	// Without a token logout is rejected.
	resp, err = server.DoJSON(http.MethodPost, "/api/accounts/logout/", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPasswordResetFlow(t *testing.T) {
	server := freshServer(t)
	email, password := TestAccountCredentials("reset")
	_, err := testDB.CreateTestAccount(context.Background(), email, password, false)
	require.NoError(t, err)

	var resetResp apiEnvelope
	resp, err := server.DoJSON(http.MethodPost, "/api/accounts/retrieve-password/", map[string]string{
		"email": email,
	}, nil, &resetResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	sent := server.Mailer.WaitForEmail(2 * time.Second)
	require.NotNil(t, sent, "reset email was never sent")
	require.Equal(t, "password_reset", sent.Kind)

	resp, err = server.DoJSON(http.MethodPost, "/api/accounts/reset-password/", map[string]string{
		"token":        sent.Token,
		"new_password": "BrandNewPassword1",
	}, nil, &resetResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Old password no longer works, new one does.
	var loginResp apiEnvelope
	resp, err = server.DoJSON(http.MethodPost, "/api/accounts/login/", map[string]string{
		"email":    email,
		"password": password,
	}, nil, &loginResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = server.DoJSON(http.MethodPost, "/api/accounts/login/", map[string]string{
		"email":    email,
		"password": "BrandNewPassword1",
	}, nil, &loginResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Unknown email is surfaced, matching the legacy contract.
	resp, err = server.DoJSON(http.MethodPost, "/api/accounts/retrieve-password/", map[string]string{
		"email": "nobody@example.com",
	}, nil, &resetResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email not found.", resetResp.Message)
}
