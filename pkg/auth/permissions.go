package auth

// AuditPermissions gates the analysis features.
type AuditPermissions struct {
	Enabled          bool `json:"enabled"`
	UserAnalysis     bool `json:"userAnalysis"`
	RoleAnalysis     bool `json:"roleAnalysis"`
	CombinedAnalysis bool `json:"combinedAnalysis"`
	Recommendations  bool `json:"recommendations"`
}

// Permissions is the per-user feature flag set. It is a fixed struct rather
// than a keyed map so the recognized flags are checked at compile time.
type Permissions struct {
	Audit            AuditPermissions `json:"audit"`
	UserAccessReview bool             `json:"userAccessReview"`
	SORReview        bool             `json:"sorReview"`
	SuperUserAccess  bool             `json:"superUserAccess"`
	Dashboard        bool             `json:"dashboard"`
}

// DefaultPermissions is what a newly created user gets when the request
// carries no explicit permissions: dashboard only.
func DefaultPermissions() Permissions {
	return Permissions{Dashboard: true}
}

// AdminPermissions grants every flag; used for the bootstrap admin account.
func AdminPermissions() Permissions {
	return Permissions{
		Audit: AuditPermissions{
			Enabled:          true,
			UserAnalysis:     true,
			RoleAnalysis:     true,
			CombinedAnalysis: true,
			Recommendations:  true,
		},
		UserAccessReview: true,
		SORReview:        true,
		SuperUserAccess:  true,
		Dashboard:        true,
	}
}
