// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthPasswordReset      = "auth.password_reset"
	KeyAuthResetRequested     = "auth.reset_requested"
	KeyAuthInviteAccepted     = "auth.invite_accepted"
	KeyAccessDenied           = "auth.access_denied"

	// Users
	KeyUserInvited  = "user.invited"
	KeyUserUpdated  = "user.updated"
	KeyUserDeleted  = "user.deleted"
	KeyUserNotFound = "user.not_found"

	// Contracts
	KeyContractCreated    = "contract.created"
	KeyContractUpdated    = "contract.updated"
	KeyContractDeleted    = "contract.deleted"
	KeyContractTerminated = "contract.terminated"
	KeyContractNotFound   = "contract.not_found"
	KeyAvailabilityFailed = "contract.availability_failed"

	// Content
	KeyContentCreated  = "content.created"
	KeyContentUpdated  = "content.updated"
	KeyContentDeleted  = "content.deleted"
	KeyContentNotFound = "content.not_found"
	KeyContentLinked   = "content.linked"
	KeyContentUnlinked = "content.unlinked"

	// Royalties
	KeyRoyaltyCreated  = "royalty.created"
	KeyRoyaltyUpdated  = "royalty.updated"
	KeyRoyaltyNotFound = "royalty.not_found"

	// Documents
	KeyDocumentUploaded = "document.uploaded"
	KeyDocumentDeleted  = "document.deleted"
	KeyDocumentNotFound = "document.not_found"

	// Notifications
	KeyNotificationNotFound = "notification.not_found"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Rate limiting
	KeyRateLimited = "rate.limited"
)
