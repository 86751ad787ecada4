package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"internhunt-engine/internal/config"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the engine's secrets in the OS keychain.
	KeyringService = "internhunt"

	// PasswordEnv is consulted when the keychain has nothing, e.g. on headless hosts.
	PasswordEnv = "INTERNHUNT_IMAP_PASSWORD"
)

var ErrPasswordNotFound = errors.New("IMAP password not found (set it in keychain or via " + PasswordEnv + ")")

func GetIMAPPassword(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		pw, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	if pw := os.Getenv(PasswordEnv); strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	return "", ErrPasswordNotFound
}

func SetIMAPPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeleteIMAPPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	err := keyring.Delete(KeyringService, keyringAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func HasIMAPPassword(keyringAccount string) bool {
	_, err := GetIMAPPassword(keyringAccount)
	return err == nil
}

func IMAPKeyringAccount(email config.Email) string {
	return fmt.Sprintf("internhunt:imap:%s@%s", email.Username, email.IMAPHost)
}
