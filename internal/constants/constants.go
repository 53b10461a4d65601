package constants

// Session
const (
	SessionCookieName = "vc_session"
	ContextKeyUserID  = "user_id"
	SessionMaxAge     = 86400 * 7 // 7 days
)

// Listing limits
const (
	VoterListingCap = 500
	TopColegios     = 15
)
