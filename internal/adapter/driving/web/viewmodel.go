package web

import (
	"time"

	vm "github.com/ericfisherdev/credtrust/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/credtrust/internal/domain/model"
)

const displayDate = "2 Jan 2006"

var methodLabels = []struct {
	method model.VerificationMethod
	label  string
}{
	{model.VerificationMethodCode, "Verification code"},
	{model.VerificationMethodURL, "Verification link"},
	{model.VerificationMethodHash, "Verification hash"},
}

// toVerifyFormViewModel builds the form state. An unknown or empty method
// selects code.
func toVerifyFormViewModel(method, value, csrf string) vm.VerifyFormViewModel {
	if method == "" {
		method = string(model.VerificationMethodCode)
	}

	form := vm.VerifyFormViewModel{
		Action:    "/verify",
		CSRFToken: csrf,
		Method:    method,
		Value:     value,
		Methods:   make([]vm.MethodOption, 0, len(methodLabels)),
	}
	for _, m := range methodLabels {
		form.Methods = append(form.Methods, vm.MethodOption{
			Value:    string(m.method),
			Label:    m.label,
			Selected: string(m.method) == method,
		})
	}
	return form
}

// toVerificationResultViewModel converts a domain VerificationResult into
// presentation form. The headline never claims validity for a failed result.
func toVerificationResultViewModel(res model.VerificationResult) vm.VerificationResultViewModel {
	out := vm.VerificationResultViewModel{
		IsValid:    res.IsValid,
		Method:     string(res.Method),
		VerifiedAt: res.VerifiedAt.UTC().Format(time.RFC1123),
	}

	switch {
	case res.IsValid && res.EffectiveStatus == model.CredentialStatusExpired:
		out.Headline = "Authentic credential, now expired"
		out.Detail = "This credential was genuinely issued but its validity period has ended."
		out.BadgeClass = "expired"
	case res.IsValid:
		out.Headline = "Verified credential"
		out.Detail = "This credential was issued by the named issuer and has not been altered."
		out.BadgeClass = "valid"
	case res.Reason == model.ReasonRevoked:
		out.Headline = "Credential revoked"
		out.Detail = "The issuer has withdrawn this credential. It should not be relied upon."
		out.BadgeClass = "revoked"
	case res.Reason == model.ReasonTampered:
		out.Headline = "Credential failed integrity check"
		out.Detail = "The stored record no longer matches its issued fingerprint."
		out.BadgeClass = "invalid"
	case res.Reason == model.ReasonInvalidInput:
		out.Headline = "Nothing to verify"
		out.Detail = "Enter a verification code, link, or hash."
		out.BadgeClass = "invalid"
	default:
		out.Headline = "Credential not found"
		out.Detail = "No credential matches what you entered. Check it and try again."
		out.BadgeClass = "invalid"
	}

	if res.Credential != nil && res.Reason != model.ReasonTampered {
		cred := toCredentialViewModel(*res.Credential, res.EffectiveStatus)
		out.Credential = &cred
	}
	return out
}

func toCredentialViewModel(s model.CredentialSnapshot, effective model.CredentialStatus) vm.CredentialViewModel {
	skills := s.Skills
	if skills == nil {
		skills = []string{}
	}

	cred := vm.CredentialViewModel{
		ID:               s.ID,
		Title:            s.Title,
		DescriptionHTML:  RenderMarkdown(s.Description),
		IssuerName:       s.IssuerName,
		RecipientName:    s.RecipientName,
		IssueDate:        s.IssueDate.UTC().Format(displayDate),
		Status:           string(effective),
		VerificationCode: s.VerificationCode,
		Skills:           skills,
		NSQFLevel:        s.NSQFLevel,
	}
	if s.ExpiryDate != nil {
		cred.ExpiryDate = s.ExpiryDate.UTC().Format(displayDate)
	}
	if s.NSQFLevel >= model.MinNSQFLevel && s.NSQFLevel <= model.MaxNSQFLevel {
		cred.NSQFLevelName = model.NSQFCatalog[s.NSQFLevel-1].Name
	}
	return cred
}
