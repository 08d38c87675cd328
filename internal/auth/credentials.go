package auth

import (
	"golang.org/x/crypto/bcrypt"

	"retailflow/internal/domain"
)

// BcryptCost is the cost factor for the credential table's hashes.
const BcryptCost = 10

// Credential is one record of the fixed credential table. Passwords are
// held only as bcrypt hashes.
type Credential struct {
	ID           string
	Name         string
	PasswordHash []byte
	Role         string
}

// The fixed credential table. This deployment has exactly one owner and one
// employee account; hashes are derived at startup from the provisioning
// defaults.
var credentialTable = []Credential{
	{ID: "u1", Name: "Harsh", PasswordHash: mustHash("owner123"), Role: domain.RoleOwner},
	{ID: "u2", Name: "Priya", PasswordHash: mustHash("employee123"), Role: domain.RoleEmployee},
}

func mustHash(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		panic(err)
	}
	return hash
}

// lookupCredential finds a record by exact name and verifies the password.
// Callers surface only a generic failure so nothing reveals which field was
// wrong.
func lookupCredential(name, password string) (domain.Identity, bool) {
	for _, c := range credentialTable {
		if c.Name != name {
			continue
		}
		if bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(password)) != nil {
			return domain.Identity{}, false
		}
		return domain.Identity{ID: c.ID, Name: c.Name, Role: c.Role}, true
	}
	return domain.Identity{}, false
}
