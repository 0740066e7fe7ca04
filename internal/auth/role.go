package auth

import "strings"

// Role is the derived access tier. It is computed fresh on every call and
// never persisted: verification and domain linkage can change between
// requests, so a stored copy would be a second source of truth.
type Role string

const (
	RoleNormal       Role = "normal"
	RoleDomainMember Role = "domain_member"
	RoleHR           Role = "hr"
	RoleHREquivalent Role = "hr_equivalent"
	RoleAdmin        Role = "admin"
)

// Capability names checked by the authorization gate.
type Capability string

const (
	CapPostJobs           Capability = "post_jobs"
	CapApproveWorkshops   Capability = "approve_workshops"
	CapManageApplications Capability = "manage_applications"
)

// Known free-mail providers. Anything outside this set is treated as a
// company-owned domain. This is a heuristic, not a verified fact: no DNS or
// registry lookup backs it, and a business tier of a free provider will be
// misclassified.
var freeMailDomains = map[string]struct{}{
	"gmail.com":      {},
	"googlemail.com": {},
	"yahoo.com":      {},
	"yahoo.co.uk":    {},
	"outlook.com":    {},
	"hotmail.com":    {},
	"icloud.com":     {},
	"aol.com":        {},
	"protonmail.com": {},
	"proton.me":      {},
	"gmx.com":        {},
	"mail.com":       {},
	"yandex.com":     {},
	"zoho.com":       {},
	"live.com":       {},
	"msn.com":        {},
}

// FreeMailDomain reports whether the domain belongs to a known consumer
// email provider.
func FreeMailDomain(domain string) bool {
	_, ok := freeMailDomains[strings.ToLower(strings.TrimSpace(domain))]
	return ok
}

// EmailDomain extracts the domain part of an address, lower-cased. Returns
// "" when the address has no domain.
func EmailDomain(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// Classify derives the access tier from the user row. Pure function of the
// row's current state; calling it twice on an unchanged record yields the
// same result. Missing attributes degrade to RoleNormal rather than failing.
//
// Precedence, first match wins:
//  1. explicit HR linkage
//  2. explicit domain linkage
//  3. verified domain-type account on a non-free email domain
//  4. verified administrative tier
//
// Rules 3 and 4 derive from the self-asserted user_type tag and therefore
// additionally require the verification flag; the explicit linkages in rules
// 1 and 2 are provisioned out of band and stand on their own.
func Classify(u *User) Role {
	if u == nil {
		return RoleNormal
	}
	if u.HRID != nil && strings.TrimSpace(*u.HRID) != "" {
		return RoleHR
	}
	if u.DomainID != nil && strings.TrimSpace(*u.DomainID) != "" {
		return RoleDomainMember
	}
	if u.UserType == UserTypeDomain && u.Verified {
		if domain := EmailDomain(u.Email); domain != "" && !FreeMailDomain(domain) {
			return RoleHREquivalent
		}
	}
	if u.UserType == UserTypePremium && u.Verified {
		return RoleAdmin
	}
	return RoleNormal
}

// Capabilities holds the operations a role may perform.
type Capabilities struct {
	PostJobs           bool `json:"can_post_jobs"`
	ApproveWorkshops   bool `json:"can_approve_workshops"`
	ManageApplications bool `json:"can_manage_applications"`
}

// Capabilities maps the role to its derived capabilities.
func (r Role) Capabilities() Capabilities {
	return Capabilities{
		PostJobs:           r != RoleNormal,
		ApproveWorkshops:   r == RoleAdmin,
		ManageApplications: r == RoleHR || r == RoleHREquivalent || r == RoleAdmin,
	}
}

// Allows reports whether the capability is present.
func (c Capabilities) Allows(capability Capability) bool {
	switch capability {
	case CapPostJobs:
		return c.PostJobs
	case CapApproveWorkshops:
		return c.ApproveWorkshops
	case CapManageApplications:
		return c.ManageApplications
	default:
		return false
	}
}
