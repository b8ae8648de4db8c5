//go:build windows

package natives

import (
	gocrypt "github.com/amoghe/go-crypt"
)

// platformCrypt implements the crypt(3)-compatible "crypt" native
// procedure on Windows, where no system crypt(3) exists at all, using
// the portable Go implementation.
func platformCrypt(password, salt string) (string, error) {
	return gocrypt.Crypt(password, salt)
}
