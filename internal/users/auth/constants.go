// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Flow Names

// Flow labels used for logging and the auth outcome metric.
const (
	FlowLogin          = "login"
	FlowAdminLogin     = "admin_login"
	FlowSocialSignIn   = "social_signin"
	FlowRefresh        = "refresh"
	FlowChangePassword = "change_password"
	FlowLogout         = "logout"
)

// # Field Identifiers

const (
	FieldEmail        = "email"
	FieldMobileNumber = "mobile_number"
	FieldPassword     = "password"
	FieldFirstName    = "first_name"
	FieldLastName     = "last_name"
	FieldProvider     = "provider"
	FieldOldPassword  = "old_password"
	FieldNewPassword  = "new_password"
	FieldAccessToken  = "access_token"
	FieldRefreshToken = "refresh_token"
	FieldTokenType    = "token_type"
	FieldExpiresIn    = "expires_in"
	FieldMessage      = "message"
)

// # Input Limits

const (
	// PasswordMaxLen is the bcrypt input ceiling in bytes.
	PasswordMaxLen = 72
	// PasswordMinLen applies to new passwords only.
	PasswordMinLen = 6
)

// # Client Messages

const (
	msgUserNotFound      = "User"
	msgPasswordIncorrect = "Password is incorrect!"
	msgOldPasswordWrong  = "Old password is incorrect!"
	msgAdminOnly         = "Unauthorized access!"
	msgInvalidRefresh    = "Invalid Refresh Token!"
	msgRevoked           = "Token has been revoked"
)
