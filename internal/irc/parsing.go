package irc

import (
	"fmt"
	"slices"
	"strings"
)

// CheckAddressed reports whether message starts with botNick followed by
// a separator or end of string. An empty botNick matches everything.
func CheckAddressed(message, botNick string) bool {
	if botNick == "" {
		return true
	}
	rest, ok := strings.CutPrefix(message, botNick)
	if !ok {
		return false
	}
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ' ', ':', ',':
		return true
	}
	return false
}

// CheckAdmin reports whether hostmask appears in adminList. An empty
// list grants everyone admin, matching the runtime context behavior.
func CheckAdmin(hostmask string, adminList []string) bool {
	if len(adminList) == 0 {
		return true
	}
	return slices.Contains(adminList, hostmask)
}

// CheckValid reports whether a message should be processed at all:
// the bot was addressed, or addressed mode is off, or the message is
// private; and there is at least one argument to work with.
func CheckValid(isAddressed, addressedMode, isPrivate bool, argCount int) bool {
	return (isAddressed || !addressedMode || isPrivate) && argCount > 0
}

// CheckPrivate reports whether target is a direct message rather than
// a channel.
func CheckPrivate(target string) bool {
	return !strings.HasPrefix(target, "#")
}

// ValidateHostmask checks that a configured admin hostmask has the
// nick!user@host shape with plausible components. It rejects obvious
// typos early rather than silently never matching at runtime.
func ValidateHostmask(hostmask string) error {
	if hostmask == "" {
		return fmt.Errorf("hostmask cannot be empty")
	}
	bang := strings.Index(hostmask, "!")
	at := strings.Index(hostmask, "@")
	if bang < 0 {
		return fmt.Errorf("hostmask %q must contain '!'", hostmask)
	}
	if at < 0 {
		return fmt.Errorf("hostmask %q must contain '@'", hostmask)
	}
	if bang > at {
		return fmt.Errorf("hostmask %q: '!' must come before '@'", hostmask)
	}
	nick, user, host := hostmask[:bang], hostmask[bang+1:at], hostmask[at+1:]
	if nick == "" {
		return fmt.Errorf("hostmask %q: nick cannot be empty", hostmask)
	}
	if user == "" {
		return fmt.Errorf("hostmask %q: user cannot be empty", hostmask)
	}
	if host == "" {
		return fmt.Errorf("hostmask %q: host cannot be empty", hostmask)
	}
	if !validNick(nick) {
		return fmt.Errorf("hostmask %q: invalid nick %q", hostmask, nick)
	}
	if strings.ContainsAny(user, " !@") {
		return fmt.Errorf("hostmask %q: invalid user %q", hostmask, user)
	}
	if strings.Contains(host, " ") || strings.Contains(host, "..") {
		return fmt.Errorf("hostmask %q: invalid host %q", hostmask, host)
	}
	return nil
}

// validNick follows the RFC 2812 shape: a letter or special character
// first, then letters, digits, specials, or hyphens.
func validNick(nick string) bool {
	for i := 0; i < len(nick); i++ {
		c := nick[i]
		letter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		special := c >= '[' && c <= '`' || c >= '{' && c <= '}'
		digit := c >= '0' && c <= '9'
		if i == 0 {
			if !letter && !special {
				return false
			}
			continue
		}
		if !letter && !special && !digit && c != '-' {
			return false
		}
	}
	return true
}
