package auth

import (
	liberrors "github.com/jrsteele09/dca-console/internal/errors"
)

var (
	NoAccessTokenErr        = liberrors.ErrNoAccessToken
	InvalidLoginResponseErr = liberrors.ErrInvalidLoginResponse
)
