// Package storage holds the key-value capability the stores persist through
// and the background queue that performs their write-backs.
package storage

import (
	"context"
	"errors"
	"strings"
)

// Keys under which the stores persist their collections.
const (
	KeyCart      = "cart"
	KeyWishlist  = "wishlist"
	KeyThemeMode = "themeMode"
	KeyOrders    = "orders"
)

var ErrUnavailable = errors.New("storage unavailable")

// DefaultDevice names the device whose id was left blank.
const DefaultDevice = "default"

// DeviceName normalizes a device id for the shared backends, which keep
// every device's keys apart.
func DeviceName(device string) string {
	if d := strings.TrimSpace(device); d != "" {
		return d
	}
	return DefaultDevice
}

// KV is the local device key-value storage. Get reports found=false for a
// key that was never written.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
}
