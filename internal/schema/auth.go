// Package schema holds the request shapes shared by the HTTP handlers and the
// Go API client. Validation rules live in the struct tags.
package schema

// RegisterInput creates a recruiter or candidate account.
type RegisterInput struct {
	Name     string `json:"name" validate:"notblank,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,password"`
	Role     string `json:"role" validate:"omitempty,oneof=recruiter candidate"`
}

// LoginInput exchanges credentials for tokens.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput exchanges a refresh token for a new pair.
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// VerifyEmailInput confirms an email address with a one-time code.
type VerifyEmailInput struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,otp"`
}

// ForgotPasswordInput starts password recovery.
type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyResetCodeInput trades a recovery code for a reset token.
type VerifyResetCodeInput struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,otp"`
}

// ResetPasswordInput sets a new password with a reset token.
type ResetPasswordInput struct {
	ResetToken      string `json:"reset_token" validate:"required"`
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// ChangePasswordInput rotates the password of the signed-in user.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password,nefield=CurrentPassword"`
}

// RoleInput changes a user's role.
type RoleInput struct {
	Role string `json:"role" validate:"required,oneof=admin recruiter candidate"`
}
