package users

import (
	"strings"
)

// RoleType is a role name as issued by the API
type RoleType string

const (
	RoleUser      RoleType = "Utilisateur" // Regular marketplace user
	RoleModerator RoleType = "Moderateur"  // Reviews products and users
	RoleAdmin     RoleType = "Admin"       // Full administration access
)

// Profile is the authenticated user's account as returned by the profile endpoint.
type Profile struct {
	ID                 string   `json:"id,omitempty"`
	UserID             string   `json:"userId,omitempty"`
	Email              string   `json:"userEmail,omitempty"`
	Name               string   `json:"userName,omitempty"`
	FirstName          string   `json:"userFirstname,omitempty"`
	NickName           string   `json:"userNickName,omitempty"`
	Phone              string   `json:"userPhone,omitempty"`
	Type               string   `json:"userType,omitempty"`
	Role               RoleType `json:"role,omitempty"`
	Address            string   `json:"userAddress,omitempty"`
	MainLat            *float64 `json:"userMainLat,omitempty"`
	MainLng            *float64 `json:"userMainLng,omitempty"`
	IdentityCardNumber string   `json:"identityCardNumber,omitempty"`
	ManagerName        string   `json:"managerName,omitempty"`
	ManagerEmail       string   `json:"managerEmail,omitempty"`
	Validated          bool     `json:"userValidated,omitempty"`
}

// Identifier returns the id the API uses for this user.
func (p *Profile) Identifier() string {
	if p.ID != "" {
		return p.ID
	}
	return p.UserID
}

// DisplayName joins first name and name.
func (p *Profile) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.Name)
}

// HasRole reports whether role is in the comma separated allowed list, the
// format used by route tables ("Utilisateur,Admin"). An empty list allows any
// role. Role checks on the client are navigation hints only.
func HasRole(role, allowed string) bool {
	if strings.TrimSpace(allowed) == "" {
		return true
	}
	for _, r := range strings.Split(allowed, ",") {
		if strings.TrimSpace(r) == role && role != "" {
			return true
		}
	}
	return false
}

// AnyRole reports whether any of roles passes HasRole.
func AnyRole(roles []string, allowed string) bool {
	if strings.TrimSpace(allowed) == "" {
		return true
	}
	for _, role := range roles {
		if HasRole(role, allowed) {
			return true
		}
	}
	return false
}
