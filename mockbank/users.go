package mockbank

import (
	"golang.org/x/crypto/bcrypt"
)

// User is a seeded backend account. IDs are numeric because that is what the
// real core-banking service emits.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role"`
	BranchID     int    `json:"branchId,omitempty"`
	CustomerID   int    `json:"customerId,omitempty"`
	PasswordHash string `json:"-"` // never serialize
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with a bcrypt hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// SeedUsers returns the development accounts every portal README mentions.
// Passwords are all "password123".
func SeedUsers() ([]User, error) {
	hash, err := HashPassword("password123")
	if err != nil {
		return nil, err
	}
	return []User{
		{ID: 1, Username: "jane", Email: "jane@bank.com", Role: "TELLER", BranchID: 42, PasswordHash: hash},
		{ID: 2, Username: "marco", Name: "Marco Aurelio", Email: "marco@centralbank.gov", Role: "ADMIN", PasswordHash: hash},
		{ID: 3, Username: "priya", Email: "priya@example.com", Role: "CUSTOMER", CustomerID: 99, PasswordHash: hash},
	}, nil
}
