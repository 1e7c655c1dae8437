package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/rotorlabs/rotor/internal/crypto/domain"
	cryptoService "github.com/rotorlabs/rotor/internal/crypto/service"
)

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// RootKey returns the unwrapped root key. On first access it opens the
// configured KMS keeper and unwraps the ciphertext from the environment.
// The container owns the key material and wipes it on Shutdown.
func (c *Container) RootKey() ([]byte, error) {
	var err error
	c.rootKeyInit.Do(func() {
		c.rootKey, err = c.initRootKey()
		if err != nil {
			c.initErrors["rootKey"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rootKey"]; exists {
		return nil, storedErr
	}
	return c.rootKey, nil
}

// initRootKey unwraps the root key using the configured KMS provider.
func (c *Container) initRootKey() ([]byte, error) {
	ctx := context.Background()

	keeper, err := c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open kms keeper: %w", err)
	}
	defer func() { _ = keeper.Close() }()

	rootKey, err := cryptoService.UnwrapRootKey(ctx, keeper, c.config.RootKeyCiphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap root key: %w", err)
	}

	return rootKey, nil
}

// aeadAlgorithm resolves the configured AEAD algorithm name.
func (c *Container) aeadAlgorithm() (cryptoDomain.Algorithm, error) {
	switch c.config.AEADAlgorithm {
	case string(cryptoDomain.AESGCM):
		return cryptoDomain.AESGCM, nil
	case string(cryptoDomain.ChaCha20):
		return cryptoDomain.ChaCha20, nil
	default:
		return "", fmt.Errorf("unsupported aead algorithm: %s", c.config.AEADAlgorithm)
	}
}
