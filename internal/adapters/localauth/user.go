package localauth

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type user struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
}

// newUser хэширует пароль; cost задается конфигом (в тестах - bcrypt.MinCost).
func newUser(email, password string, cost int) (*user, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}
	return &user{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (u *user) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
