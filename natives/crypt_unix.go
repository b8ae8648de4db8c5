//go:build !windows

package natives

import (
	gocrypt "github.com/sergeymakinen/go-crypt"
)

// platformCrypt implements the crypt(3)-compatible "crypt" native
// procedure on Unix-like platforms. Deliberately pure Go (no cgo call
// into libcrypt) so the VM core stays a plain `go build` away on every
// target, the same portability trade the teacher's own crypt_unix.go
// makes differently (it shells out to cgo); this module keeps both
// go-crypt forks in the dependency graph instead, one per platform.
func platformCrypt(password, salt string) (string, error) {
	return gocrypt.Crypt(password, salt)
}
