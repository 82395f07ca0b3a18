package securestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/dmitrijs2005/payslips/internal/common"
)

// LoadOrCreateDeviceSecret reads the device secret from path, creating a
// random one (mode 0600) on first use.
func LoadOrCreateDeviceSecret(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return nil, fmt.Errorf("device secret file %s is empty", path)
		}
		return []byte(secret), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read device secret: %w", err)
	}

	secret, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(secret+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("write device secret: %w", err)
	}
	return []byte(secret), nil
}
