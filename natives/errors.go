package natives

import "ark/errs"

func arityError(proc string, expected, got int) *errs.Error {
	return errs.New(errs.ArityMismatch, "%s expects %d argument(s), got %d", proc, expected, got)
}
