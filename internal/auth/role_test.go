package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestClassifyPrecedence(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want Role
	}{
		{
			name: "nil user degrades to normal",
			user: nil,
			want: RoleNormal,
		},
		{
			name: "hr linkage wins over everything",
			user: &User{Email: "x@gmail.com", UserType: UserTypePremium, Verified: true, HRID: strptr("hr-9"), DomainID: strptr("dom-1")},
			want: RoleHR,
		},
		{
			name: "domain linkage before inferred affiliation",
			user: &User{Email: "x@acme-corp.com", UserType: UserTypeDomain, Verified: true, DomainID: strptr("dom-1")},
			want: RoleDomainMember,
		},
		{
			name: "verified domain account on company mail",
			user: &User{Email: "hr@acme-corp.com", UserType: UserTypeDomain, Verified: true},
			want: RoleHREquivalent,
		},
		{
			name: "free provider never yields inferred affiliation",
			user: &User{Email: "hr@gmail.com", UserType: UserTypeDomain, Verified: true},
			want: RoleNormal,
		},
		{
			name: "unverified domain account stays normal",
			user: &User{Email: "hr@acme-corp.com", UserType: UserTypeDomain, Verified: false},
			want: RoleNormal,
		},
		{
			name: "verified premium tier",
			user: &User{Email: "admin@gmail.com", UserType: UserTypePremium, Verified: true},
			want: RoleAdmin,
		},
		{
			name: "unverified premium tier stays normal",
			user: &User{Email: "admin@acme-corp.com", UserType: UserTypePremium, Verified: false},
			want: RoleNormal,
		},
		{
			name: "blank linkage ids are ignored",
			user: &User{Email: "x@acme-corp.com", UserType: UserTypeNormal, HRID: strptr("  "), DomainID: strptr("")},
			want: RoleNormal,
		},
		{
			name: "missing email domain degrades to normal",
			user: &User{Email: "not-an-address", UserType: UserTypeDomain, Verified: true},
			want: RoleNormal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.user))
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	user := &User{Email: "hr@acme-corp.com", UserType: UserTypeDomain, Verified: true}
	first := Classify(user)
	second := Classify(user)
	assert.Equal(t, first, second)
}

func TestUnverifiedUsersNeverPostJobs(t *testing.T) {
	for _, userType := range []string{UserTypeNormal, UserTypeDomain, UserTypePremium} {
		user := &User{Email: "someone@acme-corp.com", UserType: userType, Verified: false}
		caps := Classify(user).Capabilities()
		assert.Falsef(t, caps.PostJobs, "user_type=%s", userType)
	}
}

func TestCapabilities(t *testing.T) {
	assert.Equal(t, Capabilities{}, RoleNormal.Capabilities())

	for _, role := range []Role{RoleHR, RoleDomainMember, RoleHREquivalent, RoleAdmin} {
		assert.Truef(t, role.Capabilities().PostJobs, "role=%s", role)
	}

	for _, role := range []Role{RoleNormal, RoleDomainMember, RoleHR, RoleHREquivalent} {
		assert.Falsef(t, role.Capabilities().ApproveWorkshops, "role=%s", role)
	}
	assert.True(t, RoleAdmin.Capabilities().ApproveWorkshops)

	assert.False(t, RoleDomainMember.Capabilities().ManageApplications)
	for _, role := range []Role{RoleHR, RoleHREquivalent, RoleAdmin} {
		assert.Truef(t, role.Capabilities().ManageApplications, "role=%s", role)
	}
}

func TestHRScenario(t *testing.T) {
	// Signup with a company address, domain type, verified: the account is
	// treated as company-affiliated and may post jobs.
	user := &User{Email: "hr@acme-corp.com", UserType: UserTypeDomain, Verified: true}
	role := Classify(user)
	assert.Equal(t, RoleHREquivalent, role)
	assert.True(t, role.Capabilities().PostJobs)
}

func TestFreeMailDomain(t *testing.T) {
	assert.True(t, FreeMailDomain("gmail.com"))
	assert.True(t, FreeMailDomain(" GMAIL.COM "))
	assert.False(t, FreeMailDomain("acme-corp.com"))
	assert.False(t, FreeMailDomain(""))
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "acme-corp.com", EmailDomain("HR@Acme-Corp.com"))
	assert.Equal(t, "", EmailDomain("no-at-sign"))
	assert.Equal(t, "", EmailDomain("trailing@"))
}

func TestAllowsUnknownCapability(t *testing.T) {
	assert.False(t, RoleAdmin.Capabilities().Allows(Capability("launch_rockets")))
}
