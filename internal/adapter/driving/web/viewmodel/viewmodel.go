// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// VerifyFormViewModel holds the state of the verification form.
type VerifyFormViewModel struct {
	Action    string
	CSRFToken string
	Method    string
	Value     string
	Methods   []MethodOption
}

// MethodOption is one choice in the method selector.
type MethodOption struct {
	Value    string
	Label    string
	Selected bool
}

// VerificationResultViewModel holds presentation-ready data for a verification outcome.
type VerificationResultViewModel struct {
	IsValid    bool
	Headline   string
	Detail     string
	BadgeClass string // "valid", "expired", "revoked", "invalid"
	Method     string
	VerifiedAt string
	Credential *CredentialViewModel
}

// CredentialViewModel holds presentation-ready data for a verified credential.
type CredentialViewModel struct {
	ID               string
	Title            string
	DescriptionHTML  string // sanitized HTML rendered from markdown
	IssuerName       string
	RecipientName    string
	IssueDate        string
	ExpiryDate       string // empty when the credential never expires
	Status           string
	VerificationCode string
	Skills           []string
	NSQFLevel        int
	NSQFLevelName    string
}

// VerifyPageViewModel is the full verification page.
type VerifyPageViewModel struct {
	Form   VerifyFormViewModel
	Result *VerificationResultViewModel
	Notice string
}
