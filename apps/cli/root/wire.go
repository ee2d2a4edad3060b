package root

import (
	"github.com/zenGate-Global/palmyra-rentals/apps/cli/cmd/auth"
	"github.com/zenGate-Global/palmyra-rentals/apps/cli/cmd/bootstrap"
	"github.com/zenGate-Global/palmyra-rentals/apps/cli/cmd/slug"
)

func init() {
	Root().AddCommand(auth.Command())
	Root().AddCommand(bootstrap.Command())
	Root().AddCommand(slug.Command())
}
