package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const drmClassPath = "/sys/class/drm"

var cardPattern = regexp.MustCompile(`^card[0-9]+$`)

var pciVendorNames = map[string]string{
	"0x10de": "NVIDIA Display Adapter",
	"0x1002": "AMD Display Adapter",
	"0x8086": "Intel Display Adapter",
}

// ProbeFallbackName names the single read-only device entry used when no
// management backend is available. It walks the kernel DRM class for the
// first card and maps its PCI vendor id to a generic name.
func ProbeFallbackName() string {
	return probeFallbackName(drmClassPath)
}

func probeFallbackName(root string) string {
	const unknown = "System Display Adapter"

	entries, err := os.ReadDir(root)
	if err != nil {
		return unknown
	}

	for _, entry := range entries {
		if !cardPattern.MatchString(entry.Name()) {
			continue
		}

		vendor, err := os.ReadFile(filepath.Join(root, entry.Name(), "device", "vendor"))
		if err != nil {
			return fmt.Sprintf("%s (%s)", unknown, entry.Name())
		}

		name, ok := pciVendorNames[strings.TrimSpace(string(vendor))]
		if !ok {
			name = unknown
		}
		return fmt.Sprintf("%s (%s)", name, entry.Name())
	}

	return unknown
}
