package models

// Roles a principal can act under.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Principal is the resolved caller of a request: who they are and which tenant's
// data they act on. It is built by the access guard and passed explicitly to
// every service call.
type Principal struct {
	UserID      string      `json:"userId"`
	Email       string      `json:"email"`
	TenantID    string      `json:"tenantId"`
	Role        string      `json:"role"`
	MemberID    string      `json:"memberId,omitempty"`
	Permissions Permissions `json:"permissions"`
}

// IsOwner reports whether the principal owns the tenant it acts on.
func (p Principal) IsOwner() bool {
	return p.Role == RoleOwner && p.UserID == p.TenantID
}

// OwnerPrincipal returns the principal of a caller acting on their own tenant.
func OwnerPrincipal(userID, email string) Principal {
	return Principal{UserID: userID, Email: email, TenantID: userID, Role: RoleOwner}
}

// Identity is what a verified ID token says about its bearer.
type Identity struct {
	UserID        string
	Email         string
	EmailVerified bool
}
