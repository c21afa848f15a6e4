// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/adminauth/internal/platform/constants"
	"github.com/taibuivan/adminauth/internal/platform/middleware"
	requestutil "github.com/taibuivan/adminauth/internal/platform/request"
	"github.com/taibuivan/adminauth/internal/platform/respond"
	"github.com/taibuivan/adminauth/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
type Handler struct {
	authService  *Service
	secureCookie bool
}

// NewHandler constructs a [Handler]. secureCookie should be true whenever
// the API is served over HTTPS.
func NewHandler(service *Service, secureCookie bool) *Handler {
	return &Handler{authService: service, secureCookie: secureCookie}
}

// Routes returns a [chi.Router] with the authentication routes.
//
// authenticate verifies access tokens. It is applied only to the routes that
// read the caller identity, because /refresh-token accepts a refresh token in
// the same 'Authorization' header.
//
// # Endpoints
//   - POST /login           : Password login.
//   - POST /admin-login     : Password login restricted to admin roles.
//   - POST /social-signin   : Sign-in with an external provider identity.
//   - POST /refresh-token   : New access token from a refresh token.
//   - POST /logout          : Clears the refresh cookie.
//   - POST /change-password : Authenticated.
//   - GET  /user            : Authenticated.
func (handler *Handler) Routes(authenticate func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)
	router.Post("/admin-login", handler.adminLogin)
	router.Post("/social-signin", handler.socialSignIn)
	router.Post("/refresh-token", handler.refreshToken)

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/logout", handler.logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/change-password", handler.changePassword)
			r.Get("/user", handler.currentUser)
		})
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	Password     string `json:"password"`
}

type socialSignInRequest struct {
	Email        string `json:"email"         validate:"required,email,max=320"`
	FirstName    string `json:"first_name"    validate:"required,max=100"`
	LastName     string `json:"last_name"     validate:"max=100"`
	MobileNumber string `json:"mobile_number" validate:"max=32"`
	Provider     string `json:"provider"      validate:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// # Response Payloads

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
}

type socialSignInResponse struct {
	*User
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

/*
Login authenticates with email or mobile number and password.

POST /api/v1/auth/login

Request:
  - Body: loginRequest (Email or MobileNumber, Password)

Response:
  - 200: loginResponse, refresh token also set as an HttpOnly cookie
  - 400: VALIDATION_ERROR or PROVIDER_CONFLICT
  - 401: INVALID_CREDENTIALS
  - 404: NOT_FOUND
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	input, err := decodeLogin(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.writeSession(writer, session)
}

/*
AdminLogin authenticates an account holding the admin or super_admin role.

POST /api/v1/auth/admin-login

Response:
  - 200: loginResponse
  - 401: UNAUTHORIZED when no admin role is held
*/
func (handler *Handler) adminLogin(writer http.ResponseWriter, request *http.Request) {
	input, err := decodeLogin(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.AdminLogin(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.writeSession(writer, session)
}

func decodeLogin(request *http.Request) (LoginInput, error) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		return LoginInput{}, err
	}

	validator := &validate.Validator{}
	validator.Custom(FieldEmail, input.Email == "" && input.MobileNumber == "", "email or mobile_number is required!").
		Required(FieldPassword, input.Password).
		MaxLen(FieldPassword, input.Password, PasswordMaxLen)
	if input.Email != "" {
		validator.Email(FieldEmail, input.Email)
	}

	if err := validator.Err(); err != nil {
		return LoginInput{}, err
	}

	return LoginInput{Email: input.Email, MobileNumber: input.MobileNumber, Password: input.Password}, nil
}

func (handler *Handler) writeSession(writer http.ResponseWriter, session *Session) {
	refreshToken := handler.setSessionCookie(writer, session)

	respond.OK(writer, loginResponse{
		AccessToken:  session.AccessToken.Token,
		RefreshToken: refreshToken,
		Email:        session.User.Email,
		FirstName:    session.User.FirstName,
		LastName:     session.User.LastName,
	})
}

/*
SocialSignIn signs in or enrolls an externally verified identity.

POST /api/v1/auth/social-signin

Response:
  - 200: The account plus tokens
  - 400: VALIDATION_ERROR or PROVIDER_CONFLICT
*/
func (handler *Handler) socialSignIn(writer http.ResponseWriter, request *http.Request) {
	var input socialSignInRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.SocialSignIn(request.Context(), SocialInput{
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		MobileNumber: input.MobileNumber,
		Provider:     Provider(input.Provider),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	refreshToken := handler.setSessionCookie(writer, session)
	respond.OK(writer, socialSignInResponse{
		User:         session.User,
		AccessToken:  session.AccessToken.Token,
		RefreshToken: refreshToken,
	})
}

// setSessionCookie sets the refresh cookie when the session carries a refresh
// token and returns that token, or "" when there is none.
func (handler *Handler) setSessionCookie(writer http.ResponseWriter, session *Session) string {
	if session.RefreshToken == nil {
		return ""
	}
	handler.setRefreshCookie(writer, session.RefreshToken.Token, session.RefreshToken.ExpiresAt)
	return session.RefreshToken.Token
}

/*
RefreshToken issues a new access token.

POST /api/v1/auth/refresh-token

Description: The refresh token is read from 'Authorization: Bearer' first,
then from the refresh cookie.

Response:
  - 200: {access_token, token_type, expires_in}
  - 401: MISSING_TOKEN, INVALID_TOKEN or TOKEN_EXPIRED
  - 404: NOT_FOUND
*/
func (handler *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {
	token, err := requestutil.RefreshToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	access, err := handler.authService.Refresh(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldAccessToken: access.Token,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   int64(handler.authService.tokens.AccessTTL() / time.Second),
	})
}

/*
Logout clears the refresh cookie after verifying the refresh token.

POST /api/v1/auth/logout

Description: The refresh token comes from the cookie. The cookie is cleared
even when verification fails, so a broken client state can always recover.

Response:
  - 200: {message}
  - 401: MISSING_TOKEN, INVALID_TOKEN or TOKEN_EXPIRED
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	token := ""
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		token = cookie.Value
	}

	handler.clearRefreshCookie(writer)

	if _, err := handler.authService.Logout(request.Context(), token, requestutil.Claims(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "Logged out successfully"})
}

/*
ChangePassword updates the password of the authenticated account.

POST /api/v1/auth/change-password

Response:
  - 200: {message}
  - 400: VALIDATION_ERROR
  - 401: INVALID_CREDENTIALS when the old password is wrong
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldOldPassword, input.OldPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, PasswordMinLen).
		MaxLen(FieldNewPassword, input.NewPassword, PasswordMaxLen)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(request.Context(), claims.Email, ChangePasswordInput{
		OldPassword: input.OldPassword,
		NewPassword: input.NewPassword,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "Password changed successfully!"})
}

/*
CurrentUser returns the profile of the authenticated account.

GET /api/v1/auth/user

Response:
  - 200: Profile (password digest never included)
  - 404: NOT_FOUND when the account was deleted after the token was issued
*/
func (handler *Handler) currentUser(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.authService.CurrentUser(request.Context(), claims.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// # Cookies

func (handler *Handler) setRefreshCookie(writer http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  expiresAt,
		Secure:   handler.secureCookie,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (handler *Handler) clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   handler.secureCookie,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
