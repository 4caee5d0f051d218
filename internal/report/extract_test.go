package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/nmapdb/internal/logging"
)

func decodeString(t *testing.T, input string) *Document {
	t.Helper()
	doc, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	return doc
}

func collect(e *Extractor, doc *Document) []Entry {
	var entries []Entry
	for entry := range e.Entries(doc) {
		entries = append(entries, entry)
	}
	return entries
}

func TestExtractFullReport(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "full.xml"))
	require.NoError(t, err)

	extractor := NewExtractor(nil)
	entries := collect(extractor, doc)

	require.Len(t, entries, 2)
	assert.Equal(t, 1, extractor.Skipped())

	gateway := entries[0]
	assert.Equal(t, HostRecord{
		IP:          "192.168.1.1",
		AddressType: "ipv4",
		MAC:         "00:11:22:33:44:55",
		MACVendor:   "Acme Networks",
		Hostname:    "gateway.lan",
		State:       "up",
		OSName:      "Linux 4.15 - 5.8",
		OSAccuracy:  "96",
		OSFamily:    "Linux",
		OSGen:       "4.X",
		LastUpdate:  "1700000042",
	}, gateway.Host)

	assert.Equal(t, []PortRecord{
		{IP: "192.168.1.1", PortNumber: "22", Protocol: "tcp", ServiceName: "ssh", State: "open"},
		{IP: "192.168.1.1", PortNumber: "80", Protocol: "tcp", ServiceName: "http", State: "open"},
		{IP: "192.168.1.1", PortNumber: "53", Protocol: "udp", ServiceName: "", State: "open|filtered"},
	}, gateway.Ports)

	workstation := entries[1]
	assert.Equal(t, "192.168.1.20", workstation.Host.IP)
	assert.Equal(t, "", workstation.Host.Hostname)
	assert.Equal(t, "", workstation.Host.MAC)
	assert.Equal(t, "", workstation.Host.OSName)
	assert.Empty(t, workstation.Ports)
}

func TestExtractMinimalHost(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "minimal.xml"))
	require.NoError(t, err)

	entries := collect(NewExtractor(nil), doc)
	require.Len(t, entries, 1)

	host := entries[0].Host
	assert.Equal(t, []any{"10.0.0.1", "", "", "ipv4", "", "", "", "", "", "", ""}, host.Values())

	require.Len(t, entries[0].Ports, 1)
	assert.Equal(t, []any{"10.0.0.1", "80", "tcp", "http", "open"}, entries[0].Ports[0].Values())
}

func TestExtractHostDefaults(t *testing.T) {
	tests := []struct {
		name   string
		host   HostXML
		expect HostRecord
	}{
		{
			name: "single address",
			host: HostXML{
				Addresses: []AddressXML{{Addr: "10.0.0.9", AddrType: "ipv4"}},
			},
			expect: HostRecord{IP: "10.0.0.9", AddressType: "ipv4"},
		},
		{
			name: "third address ignored",
			host: HostXML{
				Addresses: []AddressXML{
					{Addr: "10.0.0.9", AddrType: "ipv4"},
					{Addr: "aa:bb:cc:dd:ee:ff", AddrType: "mac", Vendor: "Vendor A"},
					{Addr: "11:22:33:44:55:66", AddrType: "mac", Vendor: "Vendor B"},
				},
			},
			expect: HostRecord{
				IP:          "10.0.0.9",
				AddressType: "ipv4",
				MAC:         "aa:bb:cc:dd:ee:ff",
				MACVendor:   "Vendor A",
			},
		},
		{
			name: "second address without vendor",
			host: HostXML{
				Addresses: []AddressXML{
					{Addr: "10.0.0.9", AddrType: "ipv4"},
					{Addr: "aa:bb:cc:dd:ee:ff", AddrType: "mac"},
				},
			},
			expect: HostRecord{IP: "10.0.0.9", AddressType: "ipv4", MAC: "aa:bb:cc:dd:ee:ff"},
		},
		{
			name: "os match without class",
			host: HostXML{
				Addresses: []AddressXML{{Addr: "10.0.0.9", AddrType: "ipv4"}},
				OS:        []OSXML{{Match: &OSMatchXML{Name: "Windows 10", Accuracy: "98"}}},
			},
			expect: HostRecord{IP: "10.0.0.9", AddressType: "ipv4"},
		},
		{
			name: "hostname and status",
			host: HostXML{
				Addresses: []AddressXML{{Addr: "10.0.0.9", AddrType: "ipv4"}},
				Hostnames: []HostnameXML{{Name: "db.internal"}, {Name: "db2.internal"}},
				Status:    []StatusXML{{State: "down"}},
			},
			expect: HostRecord{IP: "10.0.0.9", AddressType: "ipv4", Hostname: "db.internal", State: "down"},
		},
		{
			name: "endtime kept verbatim",
			host: HostXML{
				EndTime:   "0042",
				Addresses: []AddressXML{{Addr: "10.0.0.9", AddrType: "ipv4"}},
			},
			expect: HostRecord{IP: "10.0.0.9", AddressType: "ipv4", LastUpdate: "0042"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractHost(&tt.host)
			require.True(t, ok)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestExtractOSLayouts(t *testing.T) {
	tests := []struct {
		name   string
		os     string
		expect [4]string
	}{
		{
			name: "class nested in match",
			os: `<os><osmatch name="Windows 10" accuracy="98"/>
				<osmatch name="Windows 11" accuracy="91"><osclass osfamily="Windows" osgen="11"/></osmatch></os>`,
			expect: [4]string{"Windows 10", "98", "Windows", "11"},
		},
		{
			name:   "class directly under os",
			os:     `<os><osclass osfamily="Linux" osgen="2.6.X"/><osmatch name="Linux 2.6.17 - 2.6.28" accuracy="100"/></os>`,
			expect: [4]string{"Linux 2.6.17 - 2.6.28", "100", "Linux", "2.6.X"},
		},
		{
			name:   "match without accuracy",
			os:     `<os><osmatch name="Linux"><osclass osfamily="Linux" osgen="5.X"/></osmatch></os>`,
			expect: [4]string{"Linux", "", "Linux", "5.X"},
		},
		{
			name:   "class without match",
			os:     `<os><osclass osfamily="Linux" osgen="2.6.X"/></os>`,
			expect: [4]string{"", "", "", ""},
		},
		{
			name:   "empty os",
			os:     `<os/>`,
			expect: [4]string{"", "", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decodeString(t, `<nmaprun><host><address addr="10.0.0.9"/>`+tt.os+`</host></nmaprun>`)
			require.Len(t, doc.Hosts, 1)

			got, ok := ExtractHost(&doc.Hosts[0])
			require.True(t, ok)
			assert.Equal(t, tt.expect, [4]string{got.OSName, got.OSAccuracy, got.OSFamily, got.OSGen})
		})
	}
}

func TestExtractHostWithoutAddress(t *testing.T) {
	tests := []struct {
		name string
		host HostXML
	}{
		{"no address element", HostXML{}},
		{"empty addr attribute", HostXML{Addresses: []AddressXML{{AddrType: "ipv4"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ExtractHost(&tt.host)
			assert.False(t, ok)
		})
	}
}

func TestEntriesKeepGoodHostsBesideOddOnes(t *testing.T) {
	doc := decodeString(t, `<nmaprun>
		<host starttime="later" endtime=""><distance value="?"/>
			<address addr="10.0.0.2" addrtype="ipv4"/>
			<ports><port protocol="tcp" portid="ssh"><state state="open"/></port></ports>
			<os><osmatch name="Linux" accuracy="high"><osclass osfamily="Linux" osgen="5.X"/></osmatch></os>
		</host>
		<host endtime="1700000099"><address addr="10.0.0.3" addrtype="ipv4"/><status state="up"/></host>
	</nmaprun>`)

	entries := collect(NewExtractor(nil), doc)
	require.Len(t, entries, 2)

	odd := entries[0]
	assert.Equal(t, "10.0.0.2", odd.Host.IP)
	assert.Equal(t, "", odd.Host.LastUpdate)
	assert.Equal(t, "high", odd.Host.OSAccuracy)
	assert.Equal(t, []PortRecord{
		{IP: "10.0.0.2", PortNumber: "ssh", Protocol: "tcp", State: "open"},
	}, odd.Ports)

	good := entries[1]
	assert.Equal(t, "10.0.0.3", good.Host.IP)
	assert.Equal(t, "up", good.Host.State)
	assert.Equal(t, "1700000099", good.Host.LastUpdate)
}

func TestEntriesCountsSkippedHosts(t *testing.T) {
	doc := decodeString(t, `<nmaprun>
		<host><address addr="10.0.0.1" addrtype="ipv4"/></host>
		<host><status state="up"/></host>
		<host><address addr="" addrtype="ipv4"/></host>
		<host><address addr="10.0.0.4" addrtype="ipv4"/></host>
	</nmaprun>`)

	var buf bytes.Buffer
	logger := logging.NewWithWriter(logging.Config{Level: logging.LevelDebug}, &buf)
	extractor := NewExtractor(logger)

	entries := collect(extractor, doc)
	require.Len(t, entries, 2)
	assert.Equal(t, "10.0.0.1", entries[0].Host.IP)
	assert.Equal(t, "10.0.0.4", entries[1].Host.IP)
	assert.Equal(t, 2, extractor.Skipped())

	out := buf.String()
	assert.Contains(t, out, "Skipping host without an address")
	assert.Contains(t, out, "Host has no open ports")
	assert.Contains(t, out, "Extracted host")
}

func TestEntriesStopsEarly(t *testing.T) {
	doc := decodeString(t, `<nmaprun>
		<host><address addr="10.0.0.1"/></host>
		<host><address addr="10.0.0.2"/></host>
		<host><address addr="10.0.0.3"/></host>
	</nmaprun>`)

	var seen []string
	for entry := range NewExtractor(nil).Entries(doc) {
		seen = append(seen, entry.Host.IP)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, seen)
}

func TestEntriesVerboseFieldLogging(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "minimal.xml"))
	require.NoError(t, err)

	var quiet, verbose bytes.Buffer
	collect(NewExtractor(logging.NewWithWriter(logging.Config{Level: logging.LevelInfo}, &quiet)), doc)
	collect(NewExtractor(logging.NewWithWriter(logging.Config{Level: logging.LevelDebug}, &verbose)), doc)

	assert.NotContains(t, quiet.String(), "Extracted port")
	assert.Contains(t, verbose.String(), "Extracted port")
	assert.Contains(t, verbose.String(), "port=80")
}
