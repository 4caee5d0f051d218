package report

import (
	"iter"

	"github.com/anstrom/nmapdb/internal/logging"
)

const (
	primaryAddress   = 0
	linkLayerAddress = 1
)

// Extractor turns decoded host elements into records.
type Extractor struct {
	log     *logging.Logger
	skipped int
}

// NewExtractor creates an extractor that reports through logger.
func NewExtractor(logger *logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Extractor{log: logger}
}

// Skipped returns how many hosts were dropped for lacking an address.
func (e *Extractor) Skipped() int {
	return e.skipped
}

// Entries yields one entry per host of doc in document order. Hosts without
// a primary address are skipped.
func (e *Extractor) Entries(doc *Document) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for i := range doc.Hosts {
			host := &doc.Hosts[i]

			record, ok := ExtractHost(host)
			if !ok {
				e.skipped++
				e.log.Warn("Skipping host without an address", "index", i)
				continue
			}
			e.logHost(record)

			ports := ExtractPorts(record.IP, host)
			if len(ports) == 0 {
				e.log.Info("Host has no open ports", "ip", record.IP)
			}
			for _, p := range ports {
				e.logPort(p)
			}

			if !yield(Entry{Host: record, Ports: ports}) {
				return
			}
		}
	}
}

// ExtractHost builds the host record for h. It returns false when h has no
// usable primary address, since the address is the record's key.
func ExtractHost(h *HostXML) (HostRecord, bool) {
	primary := Nth(h.Addresses, primaryAddress)
	ip := NonEmpty(Map(primary, func(a AddressXML) string { return a.Addr }))
	if !ip.Present() {
		return HostRecord{}, false
	}

	link := Nth(h.Addresses, linkLayerAddress)
	hostname := First(h.Hostnames)
	match, class := osChain(First(h.OS))

	return HostRecord{
		IP:          ip.OrDefault(""),
		AddressType: Map(primary, func(a AddressXML) string { return a.AddrType }).OrDefault(""),
		MAC:         Map(link, func(a AddressXML) string { return a.Addr }).OrDefault(""),
		MACVendor:   Map(link, func(a AddressXML) string { return a.Vendor }).OrDefault(""),
		Hostname:    Map(hostname, func(n HostnameXML) string { return n.Name }).OrDefault(""),
		State:       Map(First(h.Status), func(s StatusXML) string { return s.State }).OrDefault(""),
		OSName:      Map(match, func(m OSMatchXML) string { return m.Name }).OrDefault(""),
		OSAccuracy:  Map(match, func(m OSMatchXML) string { return m.Accuracy }).OrDefault(""),
		OSFamily:    Map(class, func(c OSClassXML) string { return c.Family }).OrDefault(""),
		OSGen:       Map(class, func(c OSClassXML) string { return c.Gen }).OrDefault(""),
		LastUpdate:  h.EndTime,
	}, true
}

// ExtractPorts builds the port records of h, owned by ip.
func ExtractPorts(ip string, h *HostXML) []PortRecord {
	ports := make([]PortRecord, 0, len(h.Ports))
	for i := range h.Ports {
		p := &h.Ports[i]
		ports = append(ports, PortRecord{
			IP:          ip,
			PortNumber:  p.PortID,
			Protocol:    p.Protocol,
			ServiceName: Map(First(p.Service), func(s ServiceXML) string { return s.Name }).OrDefault(""),
			State:       Map(First(p.State), func(s StatusXML) string { return s.State }).OrDefault(""),
		})
	}
	return ports
}

// osChain returns the first OS match and the first OS class of os. Either
// both are present or neither is: a match without any class yields nothing.
func osChain(os Optional[OSXML]) (Optional[OSMatchXML], Optional[OSClassXML]) {
	v, ok := os.Get()
	if !ok || v.Match == nil || v.Class == nil {
		return None[OSMatchXML](), None[OSClassXML]()
	}
	return Some(*v.Match), Some(*v.Class)
}

func (e *Extractor) logHost(h HostRecord) {
	e.log.DebugHost("Extracted host", h.IP,
		"mac", h.MAC,
		"hostname", h.Hostname,
		"protocol", h.AddressType,
		"os_name", h.OSName,
		"os_family", h.OSFamily,
		"os_accuracy", h.OSAccuracy,
		"os_gen", h.OSGen,
		"last_update", h.LastUpdate,
		"state", h.State,
		"mac_vendor", h.MACVendor,
	)
}

func (e *Extractor) logPort(p PortRecord) {
	e.log.DebugPort("Extracted port", p.IP,
		"port", p.PortNumber,
		"protocol", p.Protocol,
		"name", p.ServiceName,
		"state", p.State,
	)
}
