package backend

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/miekg/dns"

	"spyglass/internal/adapter"
	"spyglass/internal/config"
	"spyglass/internal/result"
)

// dnsAdapter queries DNS records. The element name is the name to
// resolve, so dns://example.com reads as "look up example.com". Queries
// carry a bounded timeout; NXDOMAIN is a defined absent result.
type dnsAdapter struct {
	name   string
	qtype  uint16
	server string
	client *dns.Client
}

var dnsTypes = map[string]uint16{
	"A":     dns.TypeA,
	"AAAA":  dns.TypeAAAA,
	"MX":    dns.TypeMX,
	"TXT":   dns.TypeTXT,
	"CNAME": dns.TypeCNAME,
	"NS":    dns.TypeNS,
	"SOA":   dns.TypeSOA,
	"PTR":   dns.TypePTR,
	"SRV":   dns.TypeSRV,
}

func dnsFactory(cfg *config.Config) adapter.Factory {
	return func(_ context.Context, in adapter.ConstructInput) (adapter.Adapter, error) {
		qtype := dns.TypeA
		if raw, ok := in.Query["type"]; ok {
			t, known := dnsTypes[strings.ToUpper(raw)]
			if !known {
				return nil, adapter.Validationf("unsupported DNS record type %q", raw)
			}
			qtype = t
		}

		server := in.Get("server", cfg.DNS.Nameserver)
		if server == "" {
			resolv, err := dns.ClientConfigFromFile("/etc/resolv.conf")
			if err != nil || len(resolv.Servers) == 0 {
				return nil, adapter.Validationf("no nameserver available: pass ?server= or configure one")
			}
			server = net.JoinHostPort(resolv.Servers[0], resolv.Port)
		} else if !strings.Contains(server, ":") {
			server = net.JoinHostPort(server, "53")
		}

		return &dnsAdapter{
			name:   in.Resource,
			qtype:  qtype,
			server: server,
			client: &dns.Client{Timeout: cfg.Timeouts.DNS},
		}, nil
	}
}

// DNSAnswer is one resource record.
type DNSAnswer struct {
	Name  string `json:"name"`
	TTL   uint32 `json:"ttl"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// DNSRecords is the answer set for one query.
type DNSRecords struct {
	Name    string      `json:"name"`
	Type    string      `json:"query_type"`
	Server  string      `json:"server"`
	Answers []DNSAnswer `json:"answers"`
}

func (r DNSRecords) Columns() []string { return []string{"NAME", "TTL", "TYPE", "VALUE"} }

func (r DNSRecords) Rows() [][]string {
	rows := make([][]string, 0, len(r.Answers))
	for _, a := range r.Answers {
		rows = append(rows, []string{a.Name, strconv.FormatUint(uint64(a.TTL), 10), a.Type, a.Value})
	}
	return rows
}

// Structure resolves the name from the URI itself; dispatch reaches it
// only when the URI carried no resource, which is a user error for dns.
func (a *dnsAdapter) Structure(ctx context.Context) (*result.Record, error) {
	if a.name == "" {
		return nil, fmt.Errorf("dns requires a name to resolve, e.g. dns://example.com")
	}
	rec, err := a.Element(ctx, a.name)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("name %q does not exist", a.name)
	}
	return rec, nil
}

// Element queries one name. An NXDOMAIN answer is (nil, nil); a timeout
// is a definite failure, not retried here.
func (a *dnsAdapter) Element(ctx context.Context, name string) (*result.Record, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), a.qtype)
	msg.RecursionDesired = true

	resp, _, err := a.client.ExchangeContext(ctx, msg, a.server)
	if err != nil {
		return nil, fmt.Errorf("query %s against %s: %w", name, a.server, err)
	}
	if resp.Rcode == dns.RcodeNameError {
		return nil, nil
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("query %s against %s: %s", name, a.server, dns.RcodeToString[resp.Rcode])
	}

	records := DNSRecords{
		Name:   name,
		Type:   dns.TypeToString[a.qtype],
		Server: a.server,
	}
	for _, rr := range resp.Answer {
		hdr := rr.Header()
		records.Answers = append(records.Answers, DNSAnswer{
			Name:  strings.TrimSuffix(hdr.Name, "."),
			TTL:   hdr.Ttl,
			Type:  dns.TypeToString[hdr.Rrtype],
			Value: recordValue(rr),
		})
	}
	return result.New("dns_record", a.server, records), nil
}

// recordValue extracts the record's data portion without the header.
func recordValue(rr dns.RR) string {
	switch v := rr.(type) {
	case *dns.A:
		return v.A.String()
	case *dns.AAAA:
		return v.AAAA.String()
	case *dns.CNAME:
		return strings.TrimSuffix(v.Target, ".")
	case *dns.NS:
		return strings.TrimSuffix(v.Ns, ".")
	case *dns.PTR:
		return strings.TrimSuffix(v.Ptr, ".")
	case *dns.MX:
		return fmt.Sprintf("%d %s", v.Preference, strings.TrimSuffix(v.Mx, "."))
	case *dns.TXT:
		return strings.Join(v.Txt, " ")
	default:
		// rr.String() is "name ttl class type data"; keep the data.
		fields := strings.Fields(rr.String())
		if len(fields) > 4 {
			return strings.Join(fields[4:], " ")
		}
		return rr.String()
	}
}
