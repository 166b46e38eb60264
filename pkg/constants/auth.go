// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Authentication constants
const (
	// Header names
	AuthorizationHeader = "Authorization"
	ContentTypeHeader   = "Content-Type"
	AcceptHeader        = "Accept"
	UserAgentHeader     = "User-Agent"

	// Scheme used for every authenticated gateway call
	BearerScheme = "Bearer"
	BearerPrefix = "bearer "

	ContentTypeJSON = "application/json"
)

// Session store keys
const (
	StoreKeyToken  = "jwt"
	StoreKeyName   = "name"
	StoreKeyAvatar = "avatar"
)

// SessionKeys lists every key cleared on sign-out
var SessionKeys = []string{StoreKeyToken, StoreKeyName, StoreKeyAvatar}

// Claim types and identity labels
const (
	ClaimTypeRole = "role"
	ClaimTypeName = "name"

	AuthTypeJWT       = "jwt"
	AuthTypeAPI       = "apiauth"
	AuthTypeAnonymous = ""
)

// Gateway endpoints relative to the authorizer prefix
const (
	SignInEndpoint         = "/sign-in"
	SignUpEmployeeEndpoint = "/sign-up/employees"
	SignOutEndpoint        = "/sign-out"
)

// Gateway endpoints relative to the employee prefix
const (
	AvatarMeEndpoint      = "/avatar/me"
	AvatarByIDEndpoint    = "/avatar/"
	ProfilesEndpoint      = "/profiles"
	ProfileMeEndpoint     = "/profiles/me"
	AvatarUploadFormField = "file"
)

// Pet endpoints relative to the pet prefix
const (
	PetsByCustomerSuffix = "/customer"
)
