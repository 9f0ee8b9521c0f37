package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken is returned when a token payload cannot be decoded
	ErrMalformedToken = errors.New("malformed token")
)

// Principal is the unverified identity decoded from a bearer token payload.
type Principal struct {
	Subject  string
	Role     Role
	Username string
}

// segmentParser decodes base64url segments, tolerating padding.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeToken extracts a Principal from the payload segment of a three-segment
// token without checking its signature or expiry.
//
// The role is read from the "role" claim when present. Older tokens carry an
// "is_admin" flag instead; a token with neither is a plain user. The subject is
// read from "sub", falling back to "id", and may be a string or a number.
//
// Flask-JWT-Extended puts a dict identity under "sub". Its "role", "is_admin",
// "username" and "id" members are consulted after the top-level claims of the
// same name. A subject that is neither a scalar nor an object is ignored.
func DecodeToken(token string) (*Principal, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}
	if parts[1] == "" {
		return nil, fmt.Errorf("%w: empty payload segment", ErrMalformedToken)
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object: %v", ErrMalformedToken, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object", ErrMalformedToken)
	}

	identity := identityClaims(fields["sub"])

	role, err := roleFromClaims(fields, identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	return &Principal{
		Subject:  subjectFromClaims(fields, identity),
		Role:     role,
		Username: usernameFromClaims(fields, identity),
	}, nil
}

// identityClaims returns the members of an object-valued subject, or nil.
func identityClaims(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	var identity map[string]json.RawMessage
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil
	}
	return identity
}

// decodeSegment decodes a base64url segment, falling back to the standard
// alphabet for tokens produced by clients that use it.
func decodeSegment(seg string) ([]byte, error) {
	if b, err := segmentParser.DecodeSegment(seg); err == nil {
		return b, nil
	}
	if l := len(seg) % 4; l > 0 {
		seg += strings.Repeat("=", 4-l)
	}
	b, err := base64.StdEncoding.DecodeString(seg)
	if err != nil {
		return nil, fmt.Errorf("payload is not base64: %w", err)
	}
	return b, nil
}

func roleFromClaims(claimSets ...map[string]json.RawMessage) (Role, error) {
	for _, claims := range claimSets {
		raw, ok := claims["role"]
		if !ok || isNull(raw) {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("role claim is not a string")
		}
		if strings.TrimSpace(s) != "" {
			return ParseRole(s)
		}
	}

	for _, claims := range claimSets {
		raw, ok := claims["is_admin"]
		if !ok || isNull(raw) {
			continue
		}
		admin, err := parseFlag(raw)
		if err != nil {
			return "", fmt.Errorf("is_admin claim: %w", err)
		}
		if admin {
			return RoleAdmin, nil
		}
	}

	return RoleUser, nil
}

func subjectFromClaims(claims, identity map[string]json.RawMessage) string {
	if s, ok := scalarString(claims["sub"]); ok {
		return s
	}
	if s, ok := scalarString(identity["id"]); ok {
		return s
	}
	s, _ := scalarString(claims["id"])
	return s
}

// usernameFromClaims is informational; non-string values are ignored
func usernameFromClaims(claimSets ...map[string]json.RawMessage) string {
	for _, claims := range claimSets {
		var s string
		if raw, ok := claims["username"]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

// scalarString renders a JSON string or number claim.
func scalarString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// parseFlag accepts a JSON boolean or a string holding one.
func parseFlag(raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false, errors.New("not a boolean")
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, errors.New("not a boolean")
	}
	return b, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
