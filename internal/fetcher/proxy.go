package fetcher

import (
	"fmt"
	"math/rand"
	"net/url"
	"strings"

	"github.com/mixscout/mixscout/config"
)

// pickProxy selects the outbound proxy for a session attempt. A fixed
// single proxy always wins; otherwise one is drawn at random from the pool
// and combined with the provider's credential template. Returns nil when no
// proxying is configured.
func pickProxy(cfg config.ProxyConfig) (*url.URL, error) {
	if cfg.Single != "" {
		return url.Parse(cfg.Single)
	}
	if len(cfg.Pool) == 0 {
		return nil, nil
	}

	selected := cfg.Pool[rand.Intn(len(cfg.Pool))]
	if cfg.Username == "" || cfg.Password == "" {
		if !strings.Contains(selected, "://") {
			selected = "https://" + selected
		}
		return url.Parse(selected)
	}

	// Oxylabs template: user-<customer>-country-<CC>:<password>@host:port.
	// Customer IDs must not carry an email domain suffix.
	username := cfg.Username
	if at := strings.Index(username, "@"); at >= 0 {
		username = username[:at]
	}
	country := cfg.Country
	if country == "" {
		country = "US"
	}

	hostPort := selected
	if i := strings.Index(hostPort, "://"); i >= 0 {
		hostPort = hostPort[i+3:]
	}

	// The password is percent-encoded so characters like ?, @ and : do not
	// break URL parsing.
	authenticated := fmt.Sprintf("https://user-%s-country-%s:%s@%s",
		username, country, url.QueryEscape(cfg.Password), hostPort)

	return url.Parse(authenticated)
}
