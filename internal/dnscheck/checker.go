package dnscheck

import (
	"accordee/internal/misc"
	"accordee/internal/types"
	"accordee/logger"
	"context"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"strings"
	"time"
)

type (
	// Resolver looks up the TXT values published for a name. An empty answer is not an error.
	Resolver interface {
		LookupTXT(ctx context.Context, name string) ([]string, error)
	}

	Checker interface {
		// Check reports whether any TXT record of domain contains token. A lookup that fails is a
		// resolution error, a lookup that succeeds without the token is a Result with Matched false.
		Check(ctx context.Context, domain, token string) (*Result, error)
	}

	Result struct {
		Domain  string
		Records []string
		Matched bool
	}

	checker struct {
		resolver Resolver
		timeout  time.Duration
	}
)

func NewChecker(resolver Resolver, timeout time.Duration) Checker {
	return &checker{resolver: resolver, timeout: timeout}
}

func (c *checker) Check(ctx context.Context, domain, token string) (*Result, error) {
	domain = misc.NormalizeDomain(domain)
	token = strings.TrimSpace(token)
	if domain == "" || token == "" {
		return nil, types.ErrConfiguration("custom domain and verification token are required")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	records, err := c.resolver.LookupTXT(ctx, domain)
	if err != nil {
		logger.Debug("TXT lookup failed",
			zap.String("domain", domain),
			zap.Error(err))
		return nil, types.NewError(types.KindResolution, "failed to resolve TXT records for "+domain, err)
	}

	matched := lo.ContainsBy(records, func(record string) bool {
		return strings.Contains(record, token)
	})
	return &Result{Domain: domain, Records: records, Matched: matched}, nil
}
