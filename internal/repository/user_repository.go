package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/beswib/beswib/internal/model"
	"github.com/beswib/beswib/internal/utils"
)

// UserRepo provides access to the `users` table.  Besides the
// credential fields used by auth, it owns the profile columns that
// feed the purchase-eligibility gate.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userColumns = `id, email, password_hash, role, is_active,
	first_name, last_name, birth_date, phone,
	emergency_contact_name, emergency_contact_phone,
	address, postal_code, city, country,
	created_at, updated_at`

// Create inserts a user with empty profile fields and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES (?,?,?)",
		email, hash, role)
	if err != nil {
		// 1062 = MySQL duplicate entry
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.  Returns ErrNotFound when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// UpdateProfile overwrites the profile columns for a user.  The
// credential fields are never touched here.
func (r *UserRepo) UpdateProfile(ctx context.Context, u model.User) error {
	var birth interface{}
	if u.BirthDate != nil {
		birth = u.BirthDate.UTC().Format("2006-01-02")
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET first_name=?, last_name=?, birth_date=?, phone=?,
			emergency_contact_name=?, emergency_contact_phone=?,
			address=?, postal_code=?, city=?, country=?
		 WHERE id=?`,
		u.FirstName, u.LastName, birth, u.Phone,
		u.EmergencyContactName, u.EmergencyContactPhone,
		u.Address, u.PostalCode, u.City, u.Country, u.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Zero rows can also mean "no change"; confirm existence.
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	var birth sql.NullTime
	var first, last, phone, ecName, ecPhone, addr, postal, city, country sql.NullString
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
		&first, &last, &birth, &phone,
		&ecName, &ecPhone,
		&addr, &postal, &city, &country,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	if birth.Valid {
		t := birth.Time
		u.BirthDate = &t
	}
	u.FirstName = first.String
	u.LastName = last.String
	u.Phone = phone.String
	u.EmergencyContactName = ecName.String
	u.EmergencyContactPhone = ecPhone.String
	u.Address = addr.String
	u.PostalCode = postal.String
	u.City = city.String
	u.Country = country.String
	return u, nil
}
