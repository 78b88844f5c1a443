package model

import "time"

// Role names stored in users.role.  Roles are not exclusive in
// behaviour: every RUNNER may act as both buyer and seller.  ADMIN
// additionally unlocks event/organizer management and listing
// validation.
const (
	RoleRunner = "RUNNER"
	RoleAdmin  = "ADMIN"
)

// User represents a platform participant as stored in the `users`
// table.  Authentication fields (email, password hash, role) follow
// the same shape as the refresh-token based session scheme; the
// profile fields below them exist solely to satisfy the
// purchase-eligibility gate: a buyer may not check out until every
// one of them is filled in.
//
// Fields:
//  ID                    – primary key identifier.
//  Email                 – unique email address.
//  PasswordHash          – bcrypt hashed password.
//  Role                  – RUNNER or ADMIN.
//  IsActive              – whether the account is active.
//  FirstName, LastName   – legal name, required for race transfer.
//  BirthDate             – nullable until the runner fills it in.
//  Phone                 – contact phone number.
//  EmergencyContactName  – emergency contact full name.
//  EmergencyContactPhone – emergency contact phone number.
//  Address, PostalCode, City, Country – postal address block.
//  CreatedAt, UpdatedAt  – row timestamps.
type User struct {
	ID                    uint64     // users.id
	Email                 string     // users.email
	PasswordHash          string     // users.password_hash
	Role                  string     // users.role
	IsActive              bool       // users.is_active
	FirstName             string     // users.first_name
	LastName              string     // users.last_name
	BirthDate             *time.Time // users.birth_date (nullable)
	Phone                 string     // users.phone
	EmergencyContactName  string     // users.emergency_contact_name
	EmergencyContactPhone string     // users.emergency_contact_phone
	Address               string     // users.address
	PostalCode            string     // users.postal_code
	City                  string     // users.city
	Country               string     // users.country
	CreatedAt             time.Time  // users.created_at
	UpdatedAt             time.Time  // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and carries expiry and revocation
// metadata.  The plain token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
