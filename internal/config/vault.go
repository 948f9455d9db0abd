package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/vault/api"
)

// resolveVault resolves a ${VAULT:path#key} reference. KV v2 mounts nest
// the fields under "data"; both layouts are accepted.
func resolveVault(ref string) (string, error) {
	path, key, ok := strings.Cut(ref, "#")
	if !ok || path == "" || key == "" {
		return "", fmt.Errorf("invalid Vault reference %q: expected format path#key", ref)
	}
	for _, name := range []string{api.EnvVaultAddress, api.EnvVaultToken} {
		if os.Getenv(name) == "" {
			return "", fmt.Errorf("%s environment variable not set", name)
		}
	}

	cfg := api.DefaultConfig()
	if cfg.Error != nil {
		return "", fmt.Errorf("reading Vault environment: %w", cfg.Error)
	}
	client, err := api.NewClient(cfg)
	if err != nil {
		return "", fmt.Errorf("creating Vault client: %w", err)
	}
	client.SetToken(os.Getenv(api.EnvVaultToken))

	ctx, cancel := context.WithTimeout(context.Background(), secretTimeout)
	defer cancel()

	secret, err := client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("reading Vault secret at %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("no secret found at %s", path)
	}

	data := secret.Data
	if inner, ok := data["data"].(map[string]any); ok {
		data = inner
	}
	return secretField(data, key, "Vault secret at "+path)
}
