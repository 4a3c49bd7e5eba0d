package upstream

import (
	"context"

	"github.com/jrsteele09/go-adventure-bff/cookies"
	"github.com/jrsteele09/go-adventure-bff/internal/errors"
	"github.com/jrsteele09/go-adventure-bff/users"
)

const whoAmIPath = "/auth/user/"

// WhoAmI resolves the account behind an access credential. A rejected
// credential yields an error for which errors.Is(err, ErrUnauthenticated)
// holds.
func (c *Client) WhoAmI(ctx context.Context, access string) (*users.User, error) {
	jar := cookies.NewJar()
	jar.Set(c.session.GetAccessCookieName(), access)

	var u users.User
	if err := c.GetJSON(ctx, whoAmIPath, "", "whoami", jar, &u); err != nil {
		return nil, errors.Wrapf(err, "[upstream WhoAmI]")
	}
	return &u, nil
}
