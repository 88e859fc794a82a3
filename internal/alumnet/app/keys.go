package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/alumnet/pkg/jwtx"
)

// InitAuthKeys generates the Ed25519 signing keys for this process.
//
// Keys live only in memory, so every access token becomes invalid when the
// service restarts. Several keys with random identifiers are generated and
// picked at random per token; ALUMNET_NUM_KEYS changes how many.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	logger.Info("initializing ephemeral key manager", "num_keys", cfg.NumKeys)

	keyManager, err := jwtx.NewEphemeralKeyManager(cfg.Issuer, cfg.NumKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
	}

	logger.Info("generated ephemeral signing keys",
		"algorithm", jwtx.AlgorithmEdDSA,
		"num_keys", keyManager.NumSigners(),
		"issuer", cfg.Issuer,
	)
	logger.Warn("all existing tokens are now invalid due to key rotation on startup")

	return keyManager, nil
}
