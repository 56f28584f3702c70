package secrets

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gcstr/cardtrack/internal/apperr"
	"github.com/gcstr/cardtrack/internal/config"
	"github.com/gcstr/cardtrack/internal/util"
	decrypt "github.com/getsops/sops/v3/decrypt"
)

// decryptFile is swapped in tests; sops needs real key material otherwise.
var decryptFile = decrypt.File

// Token resolves the bearer token for the card office API. A sops source is
// decrypted when configured; otherwise the token is read from auth.TokenEnv.
// An empty token with a nil error means the API is called unauthenticated.
func Token(ctx context.Context, auth config.AuthConfig) (string, error) {
	if auth.Sops == nil {
		return strings.TrimSpace(os.Getenv(auth.TokenEnv)), nil
	}
	pairs, err := DecryptDotenv(ctx, auth.Sops.Path, auth.Sops.AgeKeyFile)
	if err != nil {
		return "", err
	}
	key := auth.Sops.Key
	if key == "" {
		key = auth.TokenEnv
	}
	if v, ok := pairs[key]; ok && v != "" {
		return v, nil
	}
	return "", apperr.New("secrets.Token", apperr.InvalidInput, "key %s not found in %s", key, filepath.Base(auth.Sops.Path))
}

// DecryptDotenv returns the key/value pairs of a sops-encrypted dotenv file.
func DecryptDotenv(_ context.Context, path string, ageKeyFile string) (map[string]string, error) {
	if ageKeyFile != "" {
		key := ageKeyFile
		if strings.HasPrefix(key, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				key = filepath.Join(home, key[2:])
			}
		}
		prev, had := os.LookupEnv("SOPS_AGE_KEY_FILE")
		_ = os.Setenv("SOPS_AGE_KEY_FILE", key)
		if had {
			defer os.Setenv("SOPS_AGE_KEY_FILE", prev)
		} else {
			defer os.Unsetenv("SOPS_AGE_KEY_FILE")
		}
	}

	// The decrypt package reads keys from the environment and takes no ctx.
	b, err := decryptFile(path, "dotenv")
	if err != nil {
		return nil, apperr.Wrap("secrets.DecryptDotenv", apperr.InvalidInput, err, "sops decrypt %s", filepath.Base(path))
	}
	return parseDotenv(string(b)), nil
}

func parseDotenv(s string) map[string]string {
	out := map[string]string{}
	for _, line := range util.SplitNonEmptyLines(s) {
		if strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		if key == "" {
			continue
		}
		val := strings.TrimSpace(kv[1])
		val = strings.Trim(val, `"`)
		val = strings.Trim(val, `'`)
		out[key] = val
	}
	return out
}
