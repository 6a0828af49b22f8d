package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

const idMaxAttempts = 5

// GenerateBlogID returns a new random blog id. It retries on collisions
// using the provided exists function.
func GenerateBlogID(exists func(string) (bool, error)) (string, error) {
	for i := 0; i < idMaxAttempts; i++ {
		u, err := uuid.NewRandom()
		if err != nil {
			return "", err
		}
		id := u.String()
		if exists == nil {
			return id, nil
		}
		ok, err := exists(id)
		if err != nil {
			return "", err
		}
		if !ok {
			return id, nil
		}
	}

	return "", fmt.Errorf("unable to generate unique id")
}

func generateAuthID(prefix string) (string, error) {
	id, err := randomHex(10)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", prefix, id), nil
}

func randomHex(numBytes int) (string, error) {
	if numBytes <= 0 {
		return "", fmt.Errorf("numBytes must be > 0")
	}
	buf := make([]byte, numBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
