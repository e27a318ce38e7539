package models

import (
	"encoding/json"
	"strings"

	"github.com/dmitrijs2005/brokerdesk/internal/common"
)

// Role is the coarse authorization tier of a principal.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleSubAdmin Role = "sub-admin"
	RoleUser     Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleSubAdmin, RoleUser:
		return true
	}
	return false
}

// Permission is a fine-grained capability grantable to sub-admins.
// The set is closed: values outside the constants below grant nothing.
type Permission int

const (
	PermAddProperty Permission = iota + 1
	PermEditProperty
	PermDeleteProperty
	PermWriteBlog
	PermDeleteBlog
	PermWriteReview
	PermDeleteReview
	PermDeleteUser
	PermViewMessages
	PermDeleteMessages
	PermViewInquiries
)

var permissionKeys = map[Permission]string{
	PermAddProperty:    "addProperty",
	PermEditProperty:   "editProperty",
	PermDeleteProperty: "deleteProperty",
	PermWriteBlog:      "writeBlog",
	PermDeleteBlog:     "deleteBlog",
	PermWriteReview:    "writeReview",
	PermDeleteReview:   "deleteReview",
	PermDeleteUser:     "deleteUser",
	PermViewMessages:   "viewMessages",
	PermDeleteMessages: "deleteMessages",
	PermViewInquiries:  "viewInquiries",
}

// AllPermissions lists every permission in declaration order.
func AllPermissions() []Permission {
	out := make([]Permission, 0, len(permissionKeys))
	for p := PermAddProperty; p <= PermViewInquiries; p++ {
		out = append(out, p)
	}
	return out
}

// Valid reports whether p is a member of the permission enumeration.
func (p Permission) Valid() bool {
	_, ok := permissionKeys[p]
	return ok
}

// String returns the wire key of the permission, e.g. "addProperty".
func (p Permission) String() string {
	if k, ok := permissionKeys[p]; ok {
		return k
	}
	return "unknown"
}

// ParsePermission maps a wire key to its Permission.
func ParsePermission(key string) (Permission, bool) {
	for p, k := range permissionKeys {
		if k == key {
			return p, true
		}
	}
	return 0, false
}

// PermissionSet is the grant map of a sub-admin. On the wire it is a JSON
// object keyed by permission name; unknown keys are dropped on decode.
type PermissionSet map[Permission]bool

func (s PermissionSet) MarshalJSON() ([]byte, error) {
	m := make(map[string]bool, len(s))
	for p, granted := range s {
		if p.Valid() {
			m[p.String()] = granted
		}
	}
	return json.Marshal(m)
}

func (s *PermissionSet) UnmarshalJSON(b []byte) error {
	var m map[string]bool
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	out := make(PermissionSet, len(m))
	for k, granted := range m {
		if p, ok := ParsePermission(k); ok {
			out[p] = granted
		}
	}
	*s = out
	return nil
}

// Principal is the logged-in actor.
type Principal struct {
	ID          string        `json:"_id"`
	Name        string        `json:"name"`
	Email       string        `json:"email,omitempty"`
	Role        Role          `json:"role"`
	Permissions PermissionSet `json:"permissions,omitempty"`
}

// SessionToken identifies an authenticated session. Tokens issued by the
// backend are "real"; tokens synthesized locally carry FallbackTokenPrefix.
type SessionToken string

func (t SessionToken) IsZero() bool { return t == "" }

// IsFallback reports whether the token was synthesized locally.
func (t SessionToken) IsFallback() bool {
	return strings.HasPrefix(string(t), common.FallbackTokenPrefix)
}

// IsReal reports whether the token was issued by the backend.
func (t SessionToken) IsReal() bool {
	return !t.IsZero() && !t.IsFallback()
}

// Credentials are submitted on login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
