package natives

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/ripemd160"

	"ark/errs"
	"ark/types"
)

// registerCrypto wires hashing, base64, and crypt(3)-compatible password
// hashing as native procedures, grounded in the teacher's own hashing and
// encoding built-ins (builtins/crypto.go).
func registerCrypto(r *Registry) {
	r.Register("hash-sha256", hashProc(sha256.New))
	r.Register("hash-sha1", hashProc(sha1.New))
	r.Register("hash-md5", hashProc(md5.New))
	r.Register("hash-ripemd160", hashProc(ripemd160.New))
	r.Register("encode-base64", func(args []types.Value, _ VM) (types.Value, error) {
		s, err := stringArg("encode-base64", args, 0)
		if err != nil {
			return types.Value{}, err
		}
		return types.NewString(base64.StdEncoding.EncodeToString([]byte(s))), nil
	})
	r.Register("decode-base64", func(args []types.Value, _ VM) (types.Value, error) {
		s, err := stringArg("decode-base64", args, 0)
		if err != nil {
			return types.Value{}, err
		}
		decoded, derr := base64.StdEncoding.DecodeString(s)
		if derr != nil {
			return types.Value{}, errs.TypeErrorf("decode-base64: %v", derr)
		}
		return types.NewString(string(decoded)), nil
	})
	r.Register("crypt", func(args []types.Value, _ VM) (types.Value, error) {
		if len(args) != 2 {
			return types.Value{}, arityError("crypt", 2, len(args))
		}
		password, err := stringArg("crypt", args, 0)
		if err != nil {
			return types.Value{}, err
		}
		salt, err := stringArg("crypt", args, 1)
		if err != nil {
			return types.Value{}, err
		}
		hashed, cerr := platformCrypt(password, salt)
		if cerr != nil {
			return types.Value{}, errs.Host(cerr)
		}
		return types.NewString(hashed), nil
	})
}

func hashProc(newHash func() hash.Hash) Proc {
	return func(args []types.Value, _ VM) (types.Value, error) {
		s, err := stringArg("hash", args, 0)
		if err != nil {
			return types.Value{}, err
		}
		h := newHash()
		h.Write([]byte(s))
		return types.NewString(hex.EncodeToString(h.Sum(nil))), nil
	}
}

func stringArg(proc string, args []types.Value, i int) (string, error) {
	if i >= len(args) {
		return "", arityError(proc, i+1, len(args))
	}
	s, ok := args[i].Str()
	if !ok {
		return "", errs.TypeErrorf("%s expects a String argument at position %d, got %s", proc, i, args[i].Kind())
	}
	return s, nil
}
