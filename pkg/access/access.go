// Package access validates the namespace access tokens that scope a user's
// visibility into scan inventory data.
//
// A token is one of:
//
//	"*"                  unrestricted access to every cluster and namespace
//	"cluster:namespace"  a single namespace in a single cluster
//	"cluster:all"        every namespace in a single cluster
package access

import (
	"fmt"
	"strings"

	pkgerrors "github.com/shieldscan/shield-backend/pkg/errors"
)

// Wildcard grants unrestricted access.
const Wildcard = "*"

// Validate checks every token against the access grammar. It is pure and
// order-preserving: the input slice is returned untouched on success.
func Validate(tokens []string) error {
	if len(tokens) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one namespace must be specified")
	}
	for _, token := range tokens {
		if err := validateToken(token); err != nil {
			return err
		}
	}
	return nil
}

func validateToken(token string) error {
	if token == Wildcard {
		return nil
	}
	if !strings.Contains(token, ":") {
		return invalidToken(token)
	}
	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return invalidToken(token)
	}
	if parts[0] == "" || parts[1] == "" {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid namespace format: %q: cluster and namespace cannot be empty", token))
	}
	return nil
}

func invalidToken(token string) error {
	return pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf(`invalid namespace format: %q: use "*", "cluster:namespace", or "cluster:all"`, token))
}
