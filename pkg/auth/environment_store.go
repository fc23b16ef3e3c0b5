package auth

import (
	"os"
	"strconv"
	"time"

	"vkbackup/pkg/config"
)

// EnvironmentStore reads a single read-only account from VKBACKUP_*
// variables
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve builds an account from VKBACKUP_VK_TOKEN, VKBACKUP_DISK_TOKEN and
// the optional VKBACKUP_VK_USER_ID. The name is "env" unless one is given.
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	vkToken := os.Getenv(config.EnvPrefix + "VK_TOKEN")
	diskToken := os.Getenv(config.EnvPrefix + "DISK_TOKEN")
	if vkToken == "" || diskToken == "" {
		return nil, ErrCredentialsNotFound
	}

	if name == "" {
		name = "env"
	}

	userID, _ := strconv.ParseInt(os.Getenv(config.EnvPrefix+"VK_USER_ID"), 10, 64)

	return &Account{
		Name:         name,
		VKToken:      vkToken,
		VKUserID:     userID,
		DiskToken:    diskToken,
		LastModified: time.Now(),
	}, nil
}

// List returns the environment account if one is set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(name string) bool {
	_, err := e.Retrieve(name)
	return err == nil
}
