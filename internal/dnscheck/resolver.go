package dnscheck

import (
	"context"
	"fmt"
	"github.com/miekg/dns"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"net"
	"strings"
	"time"
)

type nameserverResolver struct {
	nameservers []string
	udp         *dns.Client
	tcp         *dns.Client
}

// SystemResolvConf is where the nameservers are read from when none are configured.
const SystemResolvConf = "/etc/resolv.conf"

// NewResolver asks the given nameservers, or the ones listed in the system resolv.conf when none
// are configured. Either way an existing name without TXT records is an empty answer, not an error.
func NewResolver(nameservers []string, timeout time.Duration) (Resolver, error) {
	if len(nameservers) == 0 {
		return NewSystemResolver(SystemResolvConf, timeout)
	}
	return NewNameserverResolver(nameservers, timeout), nil
}

// NewSystemResolver reads nameservers from a resolv.conf file. Entries carrying a port are used
// as they are, the rest get the file's port.
func NewSystemResolver(resolvConf string, timeout time.Duration) (Resolver, error) {
	cfg, err := dns.ClientConfigFromFile(resolvConf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read "+resolvConf)
	}
	if len(cfg.Servers) == 0 {
		return nil, errors.New("no nameserver in " + resolvConf)
	}

	servers := lo.Map(cfg.Servers, func(server string, _ int) string {
		if _, _, err := net.SplitHostPort(server); err == nil {
			return server
		}
		return net.JoinHostPort(server, cfg.Port)
	})
	return NewNameserverResolver(servers, timeout), nil
}

func NewNameserverResolver(nameservers []string, timeout time.Duration) Resolver {
	return &nameserverResolver{
		nameservers: nameservers,
		udp:         &dns.Client{Net: "udp", Timeout: timeout},
		tcp:         &dns.Client{Net: "tcp", Timeout: timeout},
	}
}

// LookupTXT queries the nameservers in order. The next nameserver is only tried when the previous
// one could not be reached or answered with a server failure. NXDOMAIN is final.
func (r *nameserverResolver) LookupTXT(ctx context.Context, name string) ([]string, error) {
	if _, ok := dns.IsDomainName(name); !ok || name == "" {
		return nil, &net.DNSError{Err: "malformed domain name", Name: name}
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeTXT)
	msg.RecursionDesired = true

	var lastErr error
	for _, ns := range r.nameservers {
		in, err := r.exchange(ctx, msg, ns)
		if err != nil {
			lastErr = errors.Wrapf(err, "query %s", ns)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		switch in.Rcode {
		case dns.RcodeSuccess:
			return txtValues(in), nil
		case dns.RcodeNameError:
			return nil, &net.DNSError{Err: "no such host", Name: name, Server: ns, IsNotFound: true}
		default:
			lastErr = fmt.Errorf("%s answered %s for %s", ns, dns.RcodeToString[in.Rcode], name)
		}
	}
	return nil, lastErr
}

func (r *nameserverResolver) exchange(ctx context.Context, msg *dns.Msg, ns string) (*dns.Msg, error) {
	in, _, err := r.udp.ExchangeContext(ctx, msg, ns)
	if err != nil {
		return nil, err
	}
	if in.Truncated {
		in, _, err = r.tcp.ExchangeContext(ctx, msg, ns)
	}
	return in, err
}

func txtValues(msg *dns.Msg) []string {
	values := make([]string, 0, len(msg.Answer))
	for _, rr := range msg.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			values = append(values, strings.Join(txt.Txt, ""))
		}
	}
	return values
}
