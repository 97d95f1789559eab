package plugin

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
)

// Info contains plugin metadata
type Info struct {
	ID       string // Unique plugin identifier (e.g., "com.example.myplugin")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	Category string // Plugin category (e.g., "Fx", "Instrument")
}

// UID derives a stable 16-byte class identifier from the string ID
func (i Info) UID() [16]byte {
	sum := sha256.Sum256([]byte(i.ID))
	var uid [16]byte
	copy(uid[:], sum[:16])
	// RFC 4122 version 5 style marker bits
	uid[6] = (uid[6] & 0x0f) | 0x50
	uid[8] = (uid[8] & 0x3f) | 0x80
	return uid
}

// ValidateUID checks that the ID can produce a usable UID
func (i Info) ValidateUID() error {
	if strings.TrimSpace(i.ID) == "" {
		return errors.New("plugin ID is empty")
	}
	uid := i.UID()
	if uid == ([16]byte{}) {
		return fmt.Errorf("plugin %q produced an all-zero UID", i.ID)
	}
	return nil
}
