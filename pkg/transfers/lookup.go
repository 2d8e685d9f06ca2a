package transfers

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
)

// LookupKind says how a recipient lookup key resolves to an account.
type LookupKind int

const (
	LookupPhone LookupKind = iota + 1
	LookupEmail
)

// LookupKey is a normalised recipient lookup key.
type LookupKey struct {
	Kind  LookupKind
	Value string
}

var (
	errMalformedLookupKey = errors.New("recipient must be an E.164 phone number or an email address")

	e164Pattern     = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

// ParseLookupKey normalises a phone number to E.164 or an email address to lower case.
func ParseLookupKey(raw string) (LookupKey, error) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return LookupKey{}, errMalformedLookupKey
	}

	if strings.Contains(key, "@") {
		addr, err := mail.ParseAddress(key)
		if err != nil || addr.Address != key || addr.Name != "" {
			return LookupKey{}, errMalformedLookupKey
		}
		return LookupKey{Kind: LookupEmail, Value: strings.ToLower(addr.Address)}, nil
	}

	phone := phoneSeparators.Replace(key)
	if strings.HasPrefix(phone, "00") {
		phone = "+" + phone[2:]
	}
	if !e164Pattern.MatchString(phone) {
		return LookupKey{}, errMalformedLookupKey
	}
	return LookupKey{Kind: LookupPhone, Value: phone}, nil
}
