package testing

import (
	"github.com/lrstanley/girc"
)

// NewMockIRCClient builds an unconnected girc.Client. It cannot send
// anything, but it satisfies GetClient() for handler-level tests.
func NewMockIRCClient() *girc.Client {
	return girc.New(girc.Config{
		Server: "irc.test.invalid",
		Port:   6667,
		Nick:   "testbot",
		User:   "testbot",
		Name:   "testbot",
	})
}
